// Package mpeg segments MPEG audio elementary streams.
//
// A Segmenter reads a stream forward once and classifies every byte as part
// of a Frame or of a Junk region:
//   - Header decodes the four bytes starting a frame; the header rules derive bitrate, samplerate and frame length
//   - A valid header is only a candidate until the header after it checks out as well
//   - A leading ID3v2 tag is reported as junk without being inspected
//   - Concatenating the regions in order always reproduces the input byte for byte
//
// Malformed input is never an error; it is junk.
package mpeg
