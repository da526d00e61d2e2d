// Package shoutcast reads ICY/Shoutcast streams for recording.
//
// It started as a fork of github.com/romantomjak/shoutcast:
//   - Playlist resolution: .pls and .m3u URLs are resolved to the actual stream URL
//   - Metadata stripping: ICY metadata blocks are consumed so Read returns audio bytes only
//   - Servers that send no metadata interval are read as plain audio
//   - No client timeout on the stream so long-running recording is supported
package shoutcast
