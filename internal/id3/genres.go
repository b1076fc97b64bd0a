package id3

import (
	"regexp"
	"strconv"
	"strings"
)

// NoGenre is the ID3v1 genre byte meaning "absent".
const NoGenre byte = 255

// genres is the ID3v1 genre list including the Winamp extensions.
var genres = [...]string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel", "Noise",
	"AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic", "Darkwave",
	"Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap",
	"Pop/Funk", "Jungle", "Native American", "Cabaret", "New Wave",
	"Psychedelic", "Rave", "Showtunes", "Trailer", "Lo-Fi", "Tribal",
	"Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll",
	"Hard Rock", "Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion",
	"Bebop", "Latin", "Revival", "Celtic", "Bluegrass", "Avantgarde",
	"Gothic Rock", "Progressive Rock", "Psychedelic Rock", "Symphonic Rock",
	"Slow Rock", "Big Band", "Chorus", "Easy Listening", "Acoustic", "Humour",
	"Speech", "Chanson", "Opera", "Chamber Music", "Sonata", "Symphony",
	"Booty Bass", "Primus", "Porn Groove", "Satire", "Slow Jam", "Club",
	"Tango", "Samba", "Folklore", "Ballad", "Power Ballad", "Rhythmic Soul",
	"Freestyle", "Duet", "Punk Rock", "Drum Solo", "A capella", "Euro-House",
	"Dance Hall", "Goa", "Drum & Bass", "Club-House", "Hardcore Techno",
	"Terror", "Indie", "BritPop", "Negerpunk", "Polsk Punk", "Beat",
	"Christian Gangsta Rap", "Heavy Metal", "Black Metal", "Crossover",
	"Contemporary Christian", "Christian Rock", "Merengue", "Salsa",
	"Thrash Metal", "Anime", "Jpop", "Synthpop", "Abstract", "Art Rock",
	"Baroque", "Bhangra", "Big Beat", "Breakbeat", "Chillout", "Downtempo",
	"Dub", "EBM", "Eclectic", "Electro", "Electroclash", "Emo", "Experimental",
	"Garage", "Global", "IDM", "Illbient", "Industro-Goth", "Jam Band",
	"Krautrock", "Leftfield", "Lounge", "Math Rock", "New Romantic",
	"Nu-Breakz", "Post-Punk", "Post-Rock", "Psytrance", "Shoegaze",
	"Space Rock", "Trop Rock", "World Music", "Neoclassical", "Audiobook",
	"Audio Theatre", "Neue Deutsche Welle", "Podcast", "Indie Rock",
	"G-Funk", "Dubstep", "Garage Rock", "Psybient",
}

// GenreName returns the name for an ID3v1 genre code, or "" if unknown.
func GenreName(code byte) string {
	if int(code) < len(genres) {
		return genres[code]
	}
	return ""
}

// GenreCode resolves a genre name or a decimal code to its ID3v1 byte.
// Unknown genres return NoGenre.
func GenreCode(name string) byte {
	name = strings.TrimSpace(name)
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(genres) {
		return byte(n)
	}
	for i, g := range genres {
		if strings.EqualFold(g, name) {
			return byte(i)
		}
	}
	return NoGenre
}

var genreRef = regexp.MustCompile(`^\((\d+)\)(.*)$`)

// expandGenre resolves ID3v2 TCON references such as "(17)", "(17)Rock" or "17".
func expandGenre(s string) string {
	if m := genreRef.FindStringSubmatch(s); m != nil {
		if m[2] != "" {
			return m[2]
		}
		s = m[1]
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(genres) {
		return genres[n]
	}
	switch s {
	case "(RX)", "RX":
		return "Remix"
	case "(CR)", "CR":
		return "Cover"
	}
	return s
}
