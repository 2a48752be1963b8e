package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"
)

// FingerprintProperty is the feature property that stores a photo's SHA-1 fingerprint.
const FingerprintProperty = "media:fingerprint"

// AppendLookupFunc reads a document from 'fh' and adds entries to 'lu'.
type AppendLookupFunc func(ctx context.Context, lu *sync.Map, fh io.ReadCloser) error

// FingerprintAppendLookupFunc indexes the "media:fingerprint" property of every feature in a
// GeoJSON FeatureCollection (or a single Feature), mapping the fingerprint to the feature's "image" property.
// Features without a fingerprint are skipped. The first image recorded for a fingerprint wins.
func FingerprintAppendLookupFunc(ctx context.Context, lu *sync.Map, fh io.ReadCloser) error {

	body, err := io.ReadAll(fh)

	if err != nil {
		return err
	}

	if !gjson.ValidBytes(body) {
		return fmt.Errorf("Invalid JSON")
	}

	var features []gjson.Result

	switch gjson.GetBytes(body, "type").String() {
	case "FeatureCollection":
		features = gjson.GetBytes(body, "features").Array()
	case "Feature":
		features = []gjson.Result{gjson.ParseBytes(body)}
	default:
		return nil
	}

	for _, f := range features {

		fp_rsp := f.Get("properties." + FingerprintProperty)

		if !fp_rsp.Exists() {
			continue
		}

		image := f.Get("properties.image").String()

		_, exists := lu.LoadOrStore(fp_rsp.String(), image)

		if exists {
			slog.Debug("Existing fingerprint key", "fingerprint", fp_rsp.String(), "image", image)
		}
	}

	return nil
}
