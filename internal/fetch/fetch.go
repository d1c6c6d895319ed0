// Package fetch downloads remote GeoJSON documents as ingestion tasks.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/pkg/errors"
)

// Result is a fetched document ready for parsing.
type Result struct {
	Bytes []byte
	Name  string
	CRS   string
}

// Task downloads one document over HTTP. It implements tasks.Task.
type Task struct {
	URL       string
	LayerName string
	CRS       string
}

func (t Task) Name() string {
	return fmt.Sprintf("fetch %s", t.URL)
}

func (t Task) Perform(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return Result{}, errors.Wrapf(err, "fail to create http request to %s", t.URL)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{}, errors.Wrapf(err, "fail to fetch %s", t.URL)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Result{}, errors.Errorf("HTTP request to %s failed with status code %d", t.URL, res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Result{}, errors.Wrapf(err, "fail to read response from %s", t.URL)
	}

	return Result{Bytes: raw, Name: t.displayName(), CRS: t.CRS}, nil
}

func (t Task) displayName() string {
	if t.LayerName != "" {
		return t.LayerName
	}
	if u, err := url.Parse(t.URL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		return path.Base(u.Path)
	}
	return t.URL
}
