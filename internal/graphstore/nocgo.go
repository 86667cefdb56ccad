//go:build !cgo

package graphstore

import "errors"

var errNeedsCgo = errors.New("graphstore: backend requires cgo")

// KuzuStore is unavailable without cgo.
type KuzuStore struct{ Store }

// SQLiteStore is unavailable without cgo.
type SQLiteStore struct{ Store }

func NewKuzuStore() (*KuzuStore, error) { return nil, errNeedsCgo }
func NewKuzuFileStore(string) (*KuzuStore, error) { return nil, errNeedsCgo }
func NewSQLiteStore(string) (*SQLiteStore, error) { return nil, errNeedsCgo }
