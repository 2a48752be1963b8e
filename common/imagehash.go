package common

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/aaronland/go-image-tools/util"
	"github.com/corona10/goimagehash"
	"gocloud.dev/blob"
)

// ImageHashRsp is a struct representing the results of an image hashing operation.
type ImageHashRsp struct {
	// String label describing the image hashing procedure used.
	Approach string `json:"approach"`
	// The hexidecimal hash of an image.
	Hash string `json:"hash"`
}

// ImageHashApproaches are the perceptual hashes computed by ImageHashes.
var ImageHashApproaches = []string{
	"avg",
	"diff",
	"perception",
	// don't bother with "ext" for now since it appears to return the same string hash as "avg"
}

// ImageHashes returns a list of ImageHashRsp instances, one for each of ImageHashApproaches, for the
// image 'key' stored in 'bucket' using the corona10/goimagehash package.
func ImageHashes(ctx context.Context, bucket *blob.Bucket, key string) ([]*ImageHashRsp, error) {

	r, err := bucket.NewReader(ctx, key, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for %s, %w", key, err)
	}

	defer r.Close()

	im, _, err := util.DecodeImageFromReader(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode image from %s, %w", key, err)
	}

	hashes := make([]*ImageHashRsp, 0, len(ImageHashApproaches))

	for _, a := range ImageHashApproaches {

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// pass
		}

		rsp, err := imageHash(im, a)

		if err != nil {
			return nil, err
		}

		hashes = append(hashes, rsp)
	}

	return hashes, nil
}

func imageHash(im image.Image, approach string) (*ImageHashRsp, error) {

	var h *goimagehash.ImageHash
	var err error

	switch approach {
	case "avg":
		h, err = goimagehash.AverageHash(im)
	case "diff":
		h, err = goimagehash.DifferenceHash(im)
	case "perception":
		h, err = goimagehash.PerceptionHash(im)
	default:
		err = errors.New("Unknown approach")
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to process image hash appoach '%s', %w", approach, err)
	}

	rsp := &ImageHashRsp{
		Approach: approach,
		Hash:     h.ToString(),
	}

	return rsp, nil
}
