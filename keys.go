package tagengine

import "github.com/simonhull/tagengine/internal/types"

// FrameKey identifies a canonical metadata field.
type FrameKey = types.FrameKey

// Frame keys, in declaration order.
const (
	KeyTitle                       = types.KeyTitle
	KeyArtist                      = types.KeyArtist
	KeyAlbum                       = types.KeyAlbum
	KeyYear                        = types.KeyYear
	KeyTrackNumber                 = types.KeyTrackNumber
	KeyGenre                       = types.KeyGenre
	KeyAlbumArtist                 = types.KeyAlbumArtist
	KeyAcoustidID                  = types.KeyAcoustidID
	KeyAcoustidFingerprint         = types.KeyAcoustidFingerprint
	KeyAlbumArtistSort             = types.KeyAlbumArtistSort
	KeyAlbumSort                   = types.KeyAlbumSort
	KeyArranger                    = types.KeyArranger
	KeyArtistSort                  = types.KeyArtistSort
	KeyArtists                     = types.KeyArtists
	KeyASIN                        = types.KeyASIN
	KeyBarcode                     = types.KeyBarcode
	KeyCatalogNumber               = types.KeyCatalogNumber
	KeyCompilation                 = types.KeyCompilation
	KeyComposerSort                = types.KeyComposerSort
	KeyDirector                    = types.KeyDirector
	KeyDiscNumber                  = types.KeyDiscNumber
	KeyDiscSubtitle                = types.KeyDiscSubtitle
	KeyEncoderSettings             = types.KeyEncoderSettings
	KeyEngineer                    = types.KeyEngineer
	KeyGapless                     = types.KeyGapless
	KeyGrouping                    = types.KeyGrouping
	KeyInitialKey                  = types.KeyInitialKey
	KeyISRC                        = types.KeyISRC
	KeyLicense                     = types.KeyLicense
	KeyLyricist                    = types.KeyLyricist
	KeyLyrics                      = types.KeyLyrics
	KeyMedia                       = types.KeyMedia
	KeyMixer                       = types.KeyMixer
	KeyMood                        = types.KeyMood
	KeyMovement                    = types.KeyMovement
	KeyMovementTotal               = types.KeyMovementTotal
	KeyMovementNumber              = types.KeyMovementNumber
	KeyMusicBrainzArtistID         = types.KeyMusicBrainzArtistID
	KeyMusicBrainzDiscID           = types.KeyMusicBrainzDiscID
	KeyMusicBrainzOriginalArtistID = types.KeyMusicBrainzOriginalArtistID
	KeyMusicBrainzOriginalAlbumID  = types.KeyMusicBrainzOriginalAlbumID
	KeyMusicBrainzRecordingID      = types.KeyMusicBrainzRecordingID
	KeyMusicBrainzAlbumArtistID    = types.KeyMusicBrainzAlbumArtistID
	KeyMusicBrainzReleaseGroupID   = types.KeyMusicBrainzReleaseGroupID
	KeyMusicBrainzAlbumID          = types.KeyMusicBrainzAlbumID
	KeyMusicBrainzTrackID          = types.KeyMusicBrainzTrackID
	KeyMusicBrainzReleaseTrackID   = types.KeyMusicBrainzReleaseTrackID
	KeyMusicBrainzTRMID            = types.KeyMusicBrainzTRMID
	KeyMusicBrainzWorkID           = types.KeyMusicBrainzWorkID
	KeyMusicIPFingerprint          = types.KeyMusicIPFingerprint
	KeyMusicIPPUID                 = types.KeyMusicIPPUID
	KeyOriginalAlbum               = types.KeyOriginalAlbum
	KeyOriginalArtist              = types.KeyOriginalArtist
	KeyOriginalFilename            = types.KeyOriginalFilename
	KeyOriginalDate                = types.KeyOriginalDate
	KeyOriginalYear                = types.KeyOriginalYear
	KeyPerformer                   = types.KeyPerformer
	KeyPodcast                     = types.KeyPodcast
	KeyPodcastURL                  = types.KeyPodcastURL
	KeyProducer                    = types.KeyProducer
	KeyRating                      = types.KeyRating
	KeyLabel                       = types.KeyLabel
	KeyReleaseCountry              = types.KeyReleaseCountry
	KeyReleaseStatus               = types.KeyReleaseStatus
	KeyReleaseType                 = types.KeyReleaseType
	KeyRemixer                     = types.KeyRemixer
	KeyReplayGainAlbumGain         = types.KeyReplayGainAlbumGain
	KeyReplayGainAlbumPeak         = types.KeyReplayGainAlbumPeak
	KeyReplayGainAlbumRange        = types.KeyReplayGainAlbumRange
	KeyReplayGainReferenceLoudness = types.KeyReplayGainReferenceLoudness
	KeyReplayGainTrackGain         = types.KeyReplayGainTrackGain
	KeyReplayGainTrackPeak         = types.KeyReplayGainTrackPeak
	KeyReplayGainTrackRange        = types.KeyReplayGainTrackRange
	KeyScript                      = types.KeyScript
	KeyShow                        = types.KeyShow
	KeyShowSort                    = types.KeyShowSort
	KeyShowMovement                = types.KeyShowMovement
	KeySubtitle                    = types.KeySubtitle
	KeyTotalDiscs                  = types.KeyTotalDiscs
	KeyTotalTracks                 = types.KeyTotalTracks
	KeyTitleSort                   = types.KeyTitleSort
	KeyWebsite                     = types.KeyWebsite
	KeyWork                        = types.KeyWork
	KeyWriter                      = types.KeyWriter
	KeyContentGroup                = types.KeyContentGroup
	KeyComposer                    = types.KeyComposer
	KeyEncodedBy                   = types.KeyEncodedBy
	KeyUnsyncedLyrics              = types.KeyUnsyncedLyrics
	KeyLength                      = types.KeyLength
	KeyConductor                   = types.KeyConductor
	KeyAttachedPicture             = types.KeyAttachedPicture
	KeyUserDefinedURL              = types.KeyUserDefinedURL
	KeyComments                    = types.KeyComments
	KeyPrivate                     = types.KeyPrivate
	KeyRelativeVolumeAdjustment    = types.KeyRelativeVolumeAdjustment
	KeyEncryptionMethod            = types.KeyEncryptionMethod
	KeyGroupIDRegistration         = types.KeyGroupIDRegistration
	KeyGeneralObject               = types.KeyGeneralObject
	KeyCommercialURL               = types.KeyCommercialURL
	KeyCopyrightURL                = types.KeyCopyrightURL
	KeyAudioFileURL                = types.KeyAudioFileURL
	KeyArtistURL                   = types.KeyArtistURL
	KeyRadioStationURL             = types.KeyRadioStationURL
	KeyPaymentURL                  = types.KeyPaymentURL
	KeyBitmapImageURL              = types.KeyBitmapImageURL
	KeyUserDefinedText             = types.KeyUserDefinedText
	KeySynchronizedLyrics          = types.KeySynchronizedLyrics
	KeyTempoCodes                  = types.KeyTempoCodes
	KeyMusicCDIdentifier           = types.KeyMusicCDIdentifier
	KeyEventTimingCodes            = types.KeyEventTimingCodes
	KeySequence                    = types.KeySequence
	KeyPlayCount                   = types.KeyPlayCount
	KeyAudioSeekPointIndex         = types.KeyAudioSeekPointIndex
	KeyMediaType                   = types.KeyMediaType
	KeyCommercialFrame             = types.KeyCommercialFrame
	KeyAudioEncryption             = types.KeyAudioEncryption
	KeySignatureFrame              = types.KeySignatureFrame
	KeySoftwareEncoder             = types.KeySoftwareEncoder
	KeyAudioEncodingMethod         = types.KeyAudioEncodingMethod
	KeyRecommendedBufferSize       = types.KeyRecommendedBufferSize
	KeyBeatsPerMinute              = types.KeyBeatsPerMinute
	KeyLanguage                    = types.KeyLanguage
	KeyFileType                    = types.KeyFileType
	KeyTime                        = types.KeyTime
	KeyRecordingDate               = types.KeyRecordingDate
	KeyReleaseDate                 = types.KeyReleaseDate
)

// PictureType categorizes an embedded picture.
type PictureType = types.PictureType

const (
	PictureOther             = types.PictureOther
	PictureIcon              = types.PictureIcon
	PictureOtherIcon         = types.PictureOtherIcon
	PictureFrontCover        = types.PictureFrontCover
	PictureBackCover         = types.PictureBackCover
	PictureLeaflet           = types.PictureLeaflet
	PictureMedia             = types.PictureMedia
	PictureLeadArtist        = types.PictureLeadArtist
	PictureArtist            = types.PictureArtist
	PictureConductor         = types.PictureConductor
	PictureBand              = types.PictureBand
	PictureComposer          = types.PictureComposer
	PictureLyricist          = types.PictureLyricist
	PictureRecordingLocation = types.PictureRecordingLocation
	PictureDuringRecording   = types.PictureDuringRecording
	PictureDuringPerformance = types.PictureDuringPerformance
	PictureVideoCapture      = types.PictureVideoCapture
	PictureBrightFish        = types.PictureBrightFish
	PictureIllustration      = types.PictureIllustration
	PictureBandLogotype      = types.PictureBandLogotype
	PicturePublisherLogotype = types.PicturePublisherLogotype
	PictureTypeNone          = types.PictureTypeNone
)

// ParseFrameKey resolves a key name such as "title" or "musicbrainz_artistid".
// Matching is case-insensitive.
func ParseFrameKey(name string) (FrameKey, bool) {
	return types.ParseFrameKey(name)
}

// AllFrameKeys returns every key in declaration order.
func AllFrameKeys() []FrameKey {
	return types.AllFrameKeys()
}
