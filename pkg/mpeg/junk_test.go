package mpeg

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestNewJunk(t *testing.T) {
	if _, err := NewJunk(nil); !errors.Is(err, ErrEmptyJunk) {
		t.Errorf("NewJunk(nil) error = %v, want ErrEmptyJunk", err)
	}
	if _, err := NewJunk([]byte{}); !errors.Is(err, ErrEmptyJunk) {
		t.Errorf("NewJunk(empty) error = %v, want ErrEmptyJunk", err)
	}
	if _, err := NewJunk(make([]byte, MaxJunkLength+1)); !errors.Is(err, ErrJunkTooLong) {
		t.Errorf("NewJunk(%d bytes) error = %v, want ErrJunkTooLong", MaxJunkLength+1, err)
	}

	data := []byte{1, 2, 3}
	j, err := NewJunk(data)
	if err != nil {
		t.Fatalf("NewJunk() error = %v", err)
	}
	data[0] = 9
	if !bytes.Equal(j.Bytes(), []byte{1, 2, 3}) {
		t.Errorf("Bytes() = %v, junk aliases its input", j.Bytes())
	}
	if j.Len() != 3 || j.Offset() != 0 {
		t.Errorf("Len(), Offset() = %d, %d, want 3, 0", j.Len(), j.Offset())
	}

	if _, err := NewJunk(make([]byte, MaxJunkLength)); err != nil {
		t.Errorf("NewJunk(%d bytes) error = %v", MaxJunkLength, err)
	}
}
