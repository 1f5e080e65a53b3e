package lidarr

// AddArtistOptions controls what Lidarr does right after an artist is
// added.
type AddArtistOptions struct {
	SearchForMissingAlbums bool `json:"searchForMissingAlbums"`
}

// Artist is a Lidarr library artist. ID is zero for lookup results not
// yet in the library.
type Artist struct {
	ID                int               `json:"id,omitempty"`
	ArtistName        string            `json:"artistName"`
	ForeignArtistID   string            `json:"foreignArtistId,omitempty"`
	Monitored         bool              `json:"monitored"`
	QualityProfileID  int               `json:"qualityProfileId,omitempty"`
	MetadataProfileID int               `json:"metadataProfileId,omitempty"`
	RootFolderPath    string            `json:"rootFolderPath,omitempty"`
	AddOptions        *AddArtistOptions `json:"addOptions,omitempty"`
}

// AddAlbumOptions controls what Lidarr does right after an album is
// added.
type AddAlbumOptions struct {
	SearchForMissingAlbums bool `json:"searchForMissingAlbums"`
}

// Album is a Lidarr library album. ForeignAlbumID is the MusicBrainz
// release-group id.
type Album struct {
	ID             int              `json:"id,omitempty"`
	Title          string           `json:"title"`
	ForeignAlbumID string           `json:"foreignAlbumId,omitempty"`
	Monitored      bool             `json:"monitored"`
	ReleaseDate    string           `json:"releaseDate,omitempty"`
	ArtistID       int              `json:"artistId,omitempty"`
	Artist         *Artist          `json:"artist,omitempty"`
	AddOptions     *AddAlbumOptions `json:"addOptions,omitempty"`
}

// Command is an asynchronous Lidarr task submission.
type Command struct {
	Name     string `json:"name"`
	ArtistID int    `json:"artistId,omitempty"`
	AlbumIDs []int  `json:"albumIds,omitempty"`
}
