package photos

// This package defines common methods and operations for turning a directory of geotagged photos in to CSV and GeoJSON (Point FeatureCollection) documents. Common operations include: Gathering photos, decoding EXIF GPS coordinates, deriving capture timestamps from filenames, writing CSV and GeoJSON and converting CSV files in to GeoJSON.
