package types

import "strings"

// FrameKey identifies a canonical, format-independent metadata field.
//
// The set is closed: every codec maps its on-disk codes onto these keys
// and back. Keys carry two fixed attributes, MultiValued and Kind.
type FrameKey int

// Kind is a display hint describing what sort of value a key holds.
type Kind int

const (
	// KindText keys hold text values.
	KindText Kind = iota // text
	// KindURL keys hold links.
	KindURL // url
	// KindImage keys hold pictures.
	KindImage // image
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindImage:
		return "image"
	default:
		return "text"
	}
}

const (
	KeyTitle FrameKey = iota
	KeyArtist
	KeyAlbum
	KeyYear
	KeyTrackNumber
	KeyGenre
	KeyAlbumArtist
	KeyAcoustidID
	KeyAcoustidFingerprint
	KeyAlbumArtistSort
	KeyAlbumSort
	KeyArranger
	KeyArtistSort
	KeyArtists
	KeyASIN
	KeyBarcode
	KeyCatalogNumber
	KeyCompilation
	KeyComposerSort
	KeyDirector
	KeyDiscNumber
	KeyDiscSubtitle
	KeyEncoderSettings
	KeyEngineer
	KeyGapless
	KeyGrouping
	KeyInitialKey
	KeyISRC
	KeyLicense
	KeyLyricist
	KeyLyrics
	KeyMedia
	KeyMixer
	KeyMood
	KeyMovement
	KeyMovementTotal
	KeyMovementNumber
	KeyMusicBrainzArtistID
	KeyMusicBrainzDiscID
	KeyMusicBrainzOriginalArtistID
	KeyMusicBrainzOriginalAlbumID
	KeyMusicBrainzRecordingID
	KeyMusicBrainzAlbumArtistID
	KeyMusicBrainzReleaseGroupID
	KeyMusicBrainzAlbumID
	KeyMusicBrainzTrackID
	KeyMusicBrainzReleaseTrackID
	KeyMusicBrainzTRMID
	KeyMusicBrainzWorkID
	KeyMusicIPFingerprint
	KeyMusicIPPUID
	KeyOriginalAlbum
	KeyOriginalArtist
	KeyOriginalFilename
	KeyOriginalDate
	KeyOriginalYear
	KeyPerformer
	KeyPodcast
	KeyPodcastURL
	KeyProducer
	KeyRating
	KeyLabel
	KeyReleaseCountry
	KeyReleaseStatus
	KeyReleaseType
	KeyRemixer
	KeyReplayGainAlbumGain
	KeyReplayGainAlbumPeak
	KeyReplayGainAlbumRange
	KeyReplayGainReferenceLoudness
	KeyReplayGainTrackGain
	KeyReplayGainTrackPeak
	KeyReplayGainTrackRange
	KeyScript
	KeyShow
	KeyShowSort
	KeyShowMovement
	KeySubtitle
	KeyTotalDiscs
	KeyTotalTracks
	KeyTitleSort
	KeyWebsite
	KeyWork
	KeyWriter
	KeyContentGroup
	KeyComposer
	KeyEncodedBy
	KeyUnsyncedLyrics
	KeyLength
	KeyConductor
	KeyAttachedPicture
	KeyUserDefinedURL
	KeyComments
	KeyPrivate
	KeyRelativeVolumeAdjustment
	KeyEncryptionMethod
	KeyGroupIDRegistration
	KeyGeneralObject
	KeyCommercialURL
	KeyCopyrightURL
	KeyAudioFileURL
	KeyArtistURL
	KeyRadioStationURL
	KeyPaymentURL
	KeyBitmapImageURL
	KeyUserDefinedText
	KeySynchronizedLyrics
	KeyTempoCodes
	KeyMusicCDIdentifier
	KeyEventTimingCodes
	KeySequence
	KeyPlayCount
	KeyAudioSeekPointIndex
	KeyMediaType
	KeyCommercialFrame
	KeyAudioEncryption
	KeySignatureFrame
	KeySoftwareEncoder
	KeyAudioEncodingMethod
	KeyRecommendedBufferSize
	KeyBeatsPerMinute
	KeyLanguage
	KeyFileType
	KeyTime
	KeyRecordingDate
	KeyReleaseDate

	numFrameKeys
)

type keyAttrs struct {
	name     string
	freeform string // TXXX description / MP4 freeform name; defaults to upper(name)
	multi    bool
	kind     Kind
}

var keyTable = [numFrameKeys]keyAttrs{
	KeyTitle:                       {name: "title"},
	KeyArtist:                      {name: "artist", multi: true},
	KeyAlbum:                       {name: "album"},
	KeyYear:                        {name: "year"},
	KeyTrackNumber:                 {name: "trackNumber"},
	KeyGenre:                       {name: "genre", multi: true},
	KeyAlbumArtist:                 {name: "albumArtist", multi: true},
	KeyAcoustidID:                  {name: "acoustid_id", freeform: "Acoustid Id"},
	KeyAcoustidFingerprint:         {name: "acoustid_fingerprint", freeform: "Acoustid Fingerprint"},
	KeyAlbumArtistSort:             {name: "albumartistsort"},
	KeyAlbumSort:                   {name: "albumsort"},
	KeyArranger:                    {name: "arranger"},
	KeyArtistSort:                  {name: "artistsort"},
	KeyArtists:                     {name: "artists"},
	KeyASIN:                        {name: "asin"},
	KeyBarcode:                     {name: "barcode"},
	KeyCatalogNumber:               {name: "catalognumber"},
	KeyCompilation:                 {name: "compilation"},
	KeyComposerSort:                {name: "composersort"},
	KeyDirector:                    {name: "director"},
	KeyDiscNumber:                  {name: "discnumber"},
	KeyDiscSubtitle:                {name: "discsubtitle"},
	KeyEncoderSettings:             {name: "encodersettings"},
	KeyEngineer:                    {name: "engineer"},
	KeyGapless:                     {name: "gapless"},
	KeyGrouping:                    {name: "grouping"},
	KeyInitialKey:                  {name: "key", freeform: "initialkey"},
	KeyISRC:                        {name: "isrc"},
	KeyLicense:                     {name: "license"},
	KeyLyricist:                    {name: "lyricist", multi: true},
	KeyLyrics:                      {name: "lyrics"},
	KeyMedia:                       {name: "media"},
	KeyMixer:                       {name: "mixer"},
	KeyMood:                        {name: "mood"},
	KeyMovement:                    {name: "movement"},
	KeyMovementTotal:               {name: "movementtotal"},
	KeyMovementNumber:              {name: "movementnumber"},
	KeyMusicBrainzArtistID:         {name: "musicbrainz_artistid", freeform: "MusicBrainz Artist Id"},
	KeyMusicBrainzDiscID:           {name: "musicbrainz_discid", freeform: "MusicBrainz Disc Id"},
	KeyMusicBrainzOriginalArtistID: {name: "musicbrainz_originalartistid", freeform: "MusicBrainz Original Artist Id"},
	KeyMusicBrainzOriginalAlbumID:  {name: "musicbrainz_originalalbumid", freeform: "MusicBrainz Original Album Id"},
	KeyMusicBrainzRecordingID:      {name: "musicbrainz_recordingid", freeform: "MusicBrainz Track Id"},
	KeyMusicBrainzAlbumArtistID:    {name: "musicbrainz_albumartistid", freeform: "MusicBrainz Album Artist Id"},
	KeyMusicBrainzReleaseGroupID:   {name: "musicbrainz_releasegroupid", freeform: "MusicBrainz Release Group Id"},
	KeyMusicBrainzAlbumID:          {name: "musicbrainz_albumid", freeform: "MusicBrainz Album Id"},
	KeyMusicBrainzTrackID:          {name: "musicbrainz_trackid"},
	KeyMusicBrainzReleaseTrackID:   {name: "musicbrainz_releasetrackid", freeform: "MusicBrainz Release Track Id"},
	KeyMusicBrainzTRMID:            {name: "musicbrainz_trmid", freeform: "MusicBrainz TRM Id"},
	KeyMusicBrainzWorkID:           {name: "musicbrainz_workid", freeform: "MusicBrainz Work Id"},
	KeyMusicIPFingerprint:          {name: "musicip_fingerprint", freeform: "fingerprint"},
	KeyMusicIPPUID:                 {name: "musicip_puid", freeform: "MusicIP PUID"},
	KeyOriginalAlbum:               {name: "originalalbum"},
	KeyOriginalArtist:              {name: "originalartist"},
	KeyOriginalFilename:            {name: "originalfilename"},
	KeyOriginalDate:                {name: "originaldate"},
	KeyOriginalYear:                {name: "originalyear"},
	KeyPerformer:                   {name: "performer"},
	KeyPodcast:                     {name: "podcast"},
	KeyPodcastURL:                  {name: "podcasturl", kind: KindURL},
	KeyProducer:                    {name: "producer"},
	KeyRating:                      {name: "_rating", freeform: "RATING"},
	KeyLabel:                       {name: "label"},
	KeyReleaseCountry:              {name: "releasecountry", freeform: "MusicBrainz Album Release Country"},
	KeyReleaseStatus:               {name: "releasestatus", freeform: "MusicBrainz Album Status"},
	KeyReleaseType:                 {name: "releasetype", freeform: "MusicBrainz Album Type"},
	KeyRemixer:                     {name: "remixer"},
	KeyReplayGainAlbumGain:         {name: "replaygain_album_gain"},
	KeyReplayGainAlbumPeak:         {name: "replaygain_album_peak"},
	KeyReplayGainAlbumRange:        {name: "replaygain_album_range"},
	KeyReplayGainReferenceLoudness: {name: "replaygain_reference_loudness"},
	KeyReplayGainTrackGain:         {name: "replaygain_track_gain"},
	KeyReplayGainTrackPeak:         {name: "replaygain_track_peak"},
	KeyReplayGainTrackRange:        {name: "replaygain_track_range"},
	KeyScript:                      {name: "script"},
	KeyShow:                        {name: "show"},
	KeyShowSort:                    {name: "showsort"},
	KeyShowMovement:                {name: "showmovement"},
	KeySubtitle:                    {name: "subtitle"},
	KeyTotalDiscs:                  {name: "totaldiscs"},
	KeyTotalTracks:                 {name: "totaltracks"},
	KeyTitleSort:                   {name: "titlesort"},
	KeyWebsite:                     {name: "website", kind: KindURL},
	KeyWork:                        {name: "work"},
	KeyWriter:                      {name: "writer"},
	KeyContentGroup:                {name: "contentGroup"},
	KeyComposer:                    {name: "composer", multi: true},
	KeyEncodedBy:                   {name: "encodedBy"},
	KeyUnsyncedLyrics:              {name: "unsyncedLyrics"},
	KeyLength:                      {name: "length"},
	KeyConductor:                   {name: "conductor"},
	KeyAttachedPicture:             {name: "attachedPicture", multi: true, kind: KindImage},
	KeyUserDefinedURL:              {name: "userDefinedUrl", freeform: "URL", multi: true, kind: KindURL},
	KeyComments:                    {name: "comments", multi: true},
	KeyPrivate:                     {name: "private"},
	KeyRelativeVolumeAdjustment:    {name: "relativeVolumeAdjustment"},
	KeyEncryptionMethod:            {name: "encryptionMethod"},
	KeyGroupIDRegistration:         {name: "groupIdRegistration"},
	KeyGeneralObject:               {name: "generalObject"},
	KeyCommercialURL:               {name: "commercialUrl", kind: KindURL},
	KeyCopyrightURL:                {name: "copyrightUrl", kind: KindURL},
	KeyAudioFileURL:                {name: "audioFileUrl", kind: KindURL},
	KeyArtistURL:                   {name: "artistUrl", kind: KindURL},
	KeyRadioStationURL:             {name: "radioStationUrl", kind: KindURL},
	KeyPaymentURL:                  {name: "paymentUrl", kind: KindURL},
	KeyBitmapImageURL:              {name: "bitmapImageUrl", kind: KindURL},
	KeyUserDefinedText:             {name: "userDefinedText", multi: true},
	KeySynchronizedLyrics:          {name: "synchronizedLyrics"},
	KeyTempoCodes:                  {name: "tempoCodes"},
	KeyMusicCDIdentifier:           {name: "musicCdIdentifier"},
	KeyEventTimingCodes:            {name: "eventTimingCodes"},
	KeySequence:                    {name: "sequence"},
	KeyPlayCount:                   {name: "playCount"},
	KeyAudioSeekPointIndex:         {name: "audioSeekPointIndex"},
	KeyMediaType:                   {name: "mediaType"},
	KeyCommercialFrame:             {name: "commercialFrame"},
	KeyAudioEncryption:             {name: "audioEncryption"},
	KeySignatureFrame:              {name: "signatureFrame"},
	KeySoftwareEncoder:             {name: "softwareEncoder"},
	KeyAudioEncodingMethod:         {name: "audioEncodingMethod"},
	KeyRecommendedBufferSize:       {name: "recommendedBufferSize"},
	KeyBeatsPerMinute:              {name: "beatsPerMinute"},
	KeyLanguage:                    {name: "language"},
	KeyFileType:                    {name: "fileType"},
	KeyTime:                        {name: "time"},
	KeyRecordingDate:               {name: "recordingDate"},
	KeyReleaseDate:                 {name: "releaseDate"},
}

var (
	keysByName     = make(map[string]FrameKey, numFrameKeys)
	keysByFreeform = make(map[string]FrameKey, numFrameKeys)
)

func init() {
	for k := range numFrameKeys {
		keysByName[strings.ToLower(keyTable[k].name)] = k
		if k == KeyAttachedPicture || k == KeyUserDefinedText {
			continue
		}
		keysByFreeform[strings.ToLower(k.FreeformName())] = k
	}
}

// AllFrameKeys returns every key in declaration order.
func AllFrameKeys() []FrameKey {
	keys := make([]FrameKey, numFrameKeys)
	for i := range keys {
		keys[i] = FrameKey(i)
	}
	return keys
}

// Valid reports whether k is a member of the closed key set.
func (k FrameKey) Valid() bool {
	return k >= 0 && k < numFrameKeys
}

// String returns the key's canonical name, e.g. "title" or "musicbrainz_albumid".
func (k FrameKey) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return keyTable[k].name
}

// MultiValued reports whether the key conceptually permits more than one value.
func (k FrameKey) MultiValued() bool {
	return k.Valid() && keyTable[k].multi
}

// Kind returns the display hint for the key.
func (k FrameKey) Kind() Kind {
	if !k.Valid() {
		return KindText
	}
	return keyTable[k].kind
}

// FreeformName returns the description used when the key is stored in a
// generic namespaced slot (ID3 TXXX, MP4 "----" with mean com.apple.iTunes).
func (k FrameKey) FreeformName() string {
	if !k.Valid() {
		return ""
	}
	if ff := keyTable[k].freeform; ff != "" {
		return ff
	}
	return strings.ToUpper(keyTable[k].name)
}

// ParseFrameKey resolves a canonical key name. Matching is case-insensitive.
func ParseFrameKey(name string) (FrameKey, bool) {
	k, ok := keysByName[strings.ToLower(name)]
	return k, ok
}

// KeyForFreeform resolves a freeform description back to its key. Codecs
// accept the result only for keys they have no native slot for.
func KeyForFreeform(description string) (FrameKey, bool) {
	k, ok := keysByFreeform[strings.ToLower(description)]
	return k, ok
}

// MarshalText implements encoding.TextMarshaler so keys can be used as JSON object keys.
func (k FrameKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FrameKey) UnmarshalText(b []byte) error {
	parsed, ok := ParseFrameKey(string(b))
	if !ok {
		return &UnknownKeyError{Name: string(b)}
	}
	*k = parsed
	return nil
}
