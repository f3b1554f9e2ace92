package objstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// gsReadCloser closes the client along with the object reader, since each
// Open gets its own client.
type gsReadCloser struct {
	*storage.Reader
	client *storage.Client
}

func (g gsReadCloser) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openGS(ctx context.Context, loc Location) (io.ReadCloser, error) {
	// Default credentials
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	rdr, err := client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", loc, err))
	}

	return gsReadCloser{Reader: rdr, client: client}, nil
}

func putGS(ctx context.Context, dest Location, r io.Reader) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return pfx.Err(err)
	}
	defer client.Close()

	w := client.Bucket(dest.Bucket).Object(dest.Key).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return pfx.Err(err)
	}

	// The object is only committed on Close
	return pfx.Err(w.Close())
}
