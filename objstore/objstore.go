// Package objstore reads and writes whole files that may live on local disk,
// in Google Storage (gs://bucket/key) or in an S3-compatible bucket
// (s3://bucket/key).
package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

type Scheme string

const (
	Local Scheme = ""
	GS    Scheme = "gs"
	S3    Scheme = "s3"
)

const schSep = "://"

// S3Options configure the S3 client. Credentials always come from the default
// AWS chain (environment, shared config, instance role).
type S3Options struct {
	Region string `json:"region" yaml:"region"`

	// Endpoint is optional, for MinIO and other S3-compatible services
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	PathStyle bool   `json:"path_style" yaml:"path_style"`
}

// Location is a parsed file address.
type Location struct {
	Scheme Scheme
	Bucket string

	// Key is the object name for remote locations and the file path for
	// local ones
	Key string
}

func (l Location) String() string {
	if l.Scheme == Local {
		return l.Key
	}
	return string(l.Scheme) + schSep + l.Bucket + "/" + l.Key
}

// Join appends a file name to a location used as a prefix.
func (l Location) Join(name string) Location {
	out := l
	if l.Scheme == Local {
		out.Key = filepath.Join(l.Key, name)
		return out
	}

	if l.Key == "" {
		out.Key = name
	} else {
		out.Key = path.Join(l.Key, name)
	}
	return out
}

// IsRemote reports whether p names a gs:// or s3:// object.
func IsRemote(p string) bool {
	return strings.HasPrefix(p, string(GS)+schSep) || strings.HasPrefix(p, string(S3)+schSep)
}

// Parse splits a gs:// or s3:// address into bucket and key. Anything else is
// treated as a local path. A remote address needs a bucket; the key may be
// empty when the location is used as an upload prefix.
func Parse(p string) (Location, error) {
	for _, sch := range []Scheme{GS, S3} {
		prefix := string(sch) + schSep
		if !strings.HasPrefix(p, prefix) {
			continue
		}

		parts := strings.SplitN(strings.TrimPrefix(p, prefix), "/", 2)
		if parts[0] == "" {
			return Location{}, fmt.Errorf("%s: no bucket name", p)
		}

		loc := Location{Scheme: sch, Bucket: parts[0]}
		if len(parts) == 2 {
			loc.Key = strings.Trim(parts[1], "/")
		}
		return loc, nil
	}

	return Location{Scheme: Local, Key: p}, nil
}

// Open returns a reader for the whole file at p.
func Open(ctx context.Context, p string, opts S3Options) (io.ReadCloser, error) {
	loc, err := Parse(p)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case GS:
		if loc.Key == "" {
			return nil, fmt.Errorf("%s: no object name", p)
		}
		return openGS(ctx, loc)
	case S3:
		if loc.Key == "" {
			return nil, fmt.Errorf("%s: no object name", p)
		}
		return openS3(ctx, loc, opts)
	}

	f, err := os.Open(loc.Key)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return f, nil
}

// Upload copies the local file to destPrefix, keeping its base name, and
// returns where it was written. destPrefix may be a local directory.
func Upload(ctx context.Context, localPath, destPrefix string, opts S3Options) (string, error) {
	prefix, err := Parse(destPrefix)
	if err != nil {
		return "", err
	}
	dest := prefix.Join(filepath.Base(localPath))

	f, err := os.Open(localPath)
	if err != nil {
		return "", pfx.Err(err)
	}
	defer f.Close()

	switch dest.Scheme {
	case GS:
		err = putGS(ctx, dest, f)
	case S3:
		err = putS3(ctx, dest, f, opts)
	default:
		err = putLocal(dest, f)
	}
	if err != nil {
		return "", fmt.Errorf("uploading %s to %s: %w", localPath, dest, err)
	}

	return dest.String(), nil
}

func putLocal(dest Location, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest.Key), 0o755); err != nil {
		return pfx.Err(err)
	}

	out, err := os.Create(dest.Key)
	if err != nil {
		return pfx.Err(err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return pfx.Err(err)
	}

	return pfx.Err(out.Close())
}
