// Package res holds static content shown by the desktop client.
package res

// AboutContent contains the Markdown content for the About dialog.
const AboutContent = `A desktop client for a TuneStream music catalog, built with Go and Fyne.

**Features:**
- Browse the catalog by artist and album, or list every song
- Stream MP3, FLAC, Ogg Vorbis and WAV songs
- Upload songs and create artists and albums
- Keyboard shortcuts: Alt+Space play/pause, Alt+Left/Right previous/next
`
