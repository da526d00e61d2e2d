package ripper

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/zachfi/mpegscan/pkg/mpeg"
)

// track is the recording of one title. Regions are written to a temp file
// next to dest, which is committed when the title changes or the stream
// ends.
type track struct {
	title string
	dest  string
	f     *os.File
	w     *bufio.Writer

	frames    int
	junk      int
	junkBytes int64
}

// sanitize makes s usable as a single path element.
func sanitize(s, fallback string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		if r < ' ' {
			return -1
		}
		return r
	}, s)

	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." {
		return fallback
	}
	return s
}

func (r *Ripper) newTrack(streamName, title string) (*track, error) {
	dir := filepath.Join(r.cfg.Dir, sanitize(streamName, "stream"))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating stream directory")
	}

	f, err := os.CreateTemp(dir, "*.mp3.tmp")
	if err != nil {
		return nil, errors.Wrap(err, "error creating temp file")
	}

	r.logger.Debug("starting new track", "title", title, "temp", f.Name())
	metricTracks.Inc()

	return &track{
		title: title,
		dest:  filepath.Join(dir, sanitize(title, "untitled")+".mp3"),
		f:     f,
		w:     bufio.NewWriterSize(f, r.cfg.writeBufferSize()),
	}, nil
}

// write appends a region to the track. Junk is counted and only written
// when keepJunk is set.
func (t *track) write(region mpeg.Region, keepJunk bool) error {
	switch region.(type) {
	case *mpeg.Frame:
		t.frames++
	case *mpeg.Junk:
		t.junk++
		t.junkBytes += int64(region.Len())
		if !keepJunk {
			return nil
		}
	}

	_, err := region.WriteTo(t.w)
	return err
}

// closeTrack flushes and closes the temp file, then commits it.
func (r *Ripper) closeTrack(t *track) {
	tempPath := t.f.Name()

	if err := t.w.Flush(); err != nil {
		r.logger.Error("error writing to file", "err", err, "path", tempPath)
	}
	if err := t.f.Sync(); err != nil {
		r.logger.Error("error syncing file", "err", err)
	}
	if err := t.f.Close(); err != nil {
		r.logger.Error("error closing file", "err", err)
	}

	r.logger.Info("track finished", "title", t.title, "frames", t.frames, "junk_regions", t.junk, "junk_bytes", t.junkBytes)

	if t.frames == 0 {
		_ = os.Remove(tempPath)
		return
	}
	r.commitTempFile(tempPath, t.dest)
}

// commitTempFile renames tempPath to destPath only if dest doesn't exist or
// the temp file is larger (so a previous crash doesn't overwrite a good recording).
func (r *Ripper) commitTempFile(tempPath, destPath string) {
	tempInfo, err := os.Stat(tempPath)
	if err != nil {
		r.logger.Error("error stating temp file", "err", err, "path", tempPath)
		_ = os.Remove(tempPath)
		return
	}

	destInfo, err := os.Stat(destPath)
	switch {
	case err != nil && !os.IsNotExist(err):
		r.logger.Error("error stating dest file", "err", err, "path", destPath)
		_ = os.Remove(tempPath)
		return
	case err == nil && tempInfo.Size() <= destInfo.Size():
		_ = os.Remove(tempPath)
		r.logger.Debug("discarded shorter recording", "path", destPath, "temp_size", tempInfo.Size(), "existing_size", destInfo.Size())
		return
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		r.logger.Error("error renaming temp to dest", "err", err, "temp", tempPath, "dest", destPath)
		_ = os.Remove(tempPath)
		return
	}
	r.logger.Debug("saved recording", "path", destPath, "size", tempInfo.Size())
}
