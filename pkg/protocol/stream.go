package protocol

import "encoding/json"

// Stream is an audio source configured on the server. Properties is nil until
// the source has reported playback capabilities.
type Stream struct {
	ID         string            `json:"id"`
	Properties *StreamProperties `json:"properties,omitempty"`
	Status     StreamStatus      `json:"status"`
	URI        StreamURI         `json:"uri"`
}

// StreamStatus is the coarse playback state of a stream.
type StreamStatus string

const (
	StreamIdle     StreamStatus = "idle"
	StreamPlaying  StreamStatus = "playing"
	StreamDisabled StreamStatus = "disabled"
	StreamUnknown  StreamStatus = "unknown"
)

// UnmarshalJSON maps unrecognized status strings to StreamUnknown so that a
// newer server cannot break decoding.
func (s *StreamStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch StreamStatus(raw) {
	case StreamIdle, StreamPlaying, StreamDisabled:
		*s = StreamStatus(raw)
	default:
		*s = StreamUnknown
	}
	return nil
}

// StreamURI is the parsed source URI of a stream.
type StreamURI struct {
	Fragment string            `json:"fragment"`
	Host     string            `json:"host"`
	Path     string            `json:"path"`
	Query    map[string]string `json:"query"`
	Raw      string            `json:"raw"`
	Scheme   string            `json:"scheme"`
}

// PlaybackStatus is the fine-grained playback state reported by a source.
type PlaybackStatus string

const (
	PlaybackPlaying PlaybackStatus = "playing"
	PlaybackPaused  PlaybackStatus = "paused"
	PlaybackStopped PlaybackStatus = "stopped"
)

// LoopStatus is the repeat mode of a source.
type LoopStatus string

const (
	LoopNone     LoopStatus = "none"
	LoopTrack    LoopStatus = "track"
	LoopPlaylist LoopStatus = "playlist"
)

// StreamProperties are the MPRIS-style capabilities and playback state of a
// stream. Optional fields are pointers: the server omits what a source does
// not support.
type StreamProperties struct {
	PlaybackStatus *PlaybackStatus `json:"playbackStatus,omitempty"`
	LoopStatus     *LoopStatus     `json:"loopStatus,omitempty"`
	Shuffle        *bool           `json:"shuffle,omitempty"`
	Volume         *int            `json:"volume,omitempty"`
	Mute           *bool           `json:"mute,omitempty"`
	Rate           *float64        `json:"rate,omitempty"`
	Position       *float64        `json:"position,omitempty"`
	CanGoNext      bool            `json:"canGoNext"`
	CanGoPrevious  bool            `json:"canGoPrevious"`
	CanPlay        bool            `json:"canPlay"`
	CanPause       bool            `json:"canPause"`
	CanSeek        bool            `json:"canSeek"`
	CanControl     bool            `json:"canControl"`
	Metadata       *StreamMetadata `json:"metadata,omitempty"`
}

// StreamMetadata is the track metadata of a stream, following the MPRIS
// metadata vocabulary. Everything is optional.
type StreamMetadata struct {
	TrackID                   *string   `json:"trackId,omitempty"`
	File                      *string   `json:"file,omitempty"`
	Duration                  *float64  `json:"duration,omitempty"`
	Artist                    []string  `json:"artist,omitempty"`
	ArtistSort                []string  `json:"artistSort,omitempty"`
	Album                     *string   `json:"album,omitempty"`
	AlbumSort                 *string   `json:"albumSort,omitempty"`
	AlbumArtist               []string  `json:"albumArtist,omitempty"`
	AlbumArtistSort           []string  `json:"albumArtistSort,omitempty"`
	Name                      *string   `json:"name,omitempty"`
	Date                      *string   `json:"date,omitempty"`
	OriginalDate              *string   `json:"originalDate,omitempty"`
	Composer                  []string  `json:"composer,omitempty"`
	Performer                 *string   `json:"performer,omitempty"`
	Work                      *string   `json:"work,omitempty"`
	Grouping                  *string   `json:"grouping,omitempty"`
	Label                     *string   `json:"label,omitempty"`
	MusicbrainzArtistID       *string   `json:"musicbrainzArtistId,omitempty"`
	MusicbrainzAlbumID        *string   `json:"musicbrainzAlbumId,omitempty"`
	MusicbrainzAlbumArtistID  *string   `json:"musicbrainzAlbumArtistId,omitempty"`
	MusicbrainzTrackID        *string   `json:"musicbrainzTrackId,omitempty"`
	MusicbrainzReleaseTrackID *string   `json:"musicbrainzReleaseTrackId,omitempty"`
	MusicbrainzWorkID         *string   `json:"musicbrainzWorkId,omitempty"`
	Lyrics                    []string  `json:"lyrics,omitempty"`
	BPM                       *int      `json:"bpm,omitempty"`
	AutoRating                *float64  `json:"autoRating,omitempty"`
	Comment                   []string  `json:"comment,omitempty"`
	ContentCreated            *string   `json:"contentCreated,omitempty"`
	DiscNumber                *int      `json:"discNumber,omitempty"`
	FirstUsed                 *string   `json:"firstUsed,omitempty"`
	Genre                     []string  `json:"genre,omitempty"`
	LastUsed                  *string   `json:"lastUsed,omitempty"`
	Lyricist                  []string  `json:"lyricist,omitempty"`
	Title                     *string   `json:"title,omitempty"`
	TrackNumber               *int      `json:"trackNumber,omitempty"`
	URL                       *string   `json:"url,omitempty"`
	ArtURL                    *string   `json:"artUrl,omitempty"`
	ArtData                   *ArtData  `json:"artData,omitempty"`
	UseCount                  *int      `json:"useCount,omitempty"`
	UserRating                *float64  `json:"userRating,omitempty"`
	SpotifyArtistID           *string   `json:"spotifyArtistId,omitempty"`
	SpotifyTrackID            *string   `json:"spotifyTrackId,omitempty"`
}

// ArtData is inline cover art, base64 encoded.
type ArtData struct {
	Data      string `json:"data"`
	Extension string `json:"extension"`
}
