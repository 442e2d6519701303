package domain

import (
	"regexp"
	"strings"
)

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([^&]+)`),
	regexp.MustCompile(`youtu\.be/([^?]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^?]+)`),
}

// DetectLinkType guesses a LinkType from well-known hosts in the URL.
// Anything unrecognized is an article.
func DetectLinkType(url string) LinkType {
	switch {
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return LinkTypeYouTube
	case strings.Contains(url, "vimeo.com"), strings.Contains(url, "dailymotion.com"):
		return LinkTypeVideo
	case strings.Contains(url, "medium.com"),
		strings.Contains(url, "tistory.com"),
		strings.Contains(url, "naver.com/blog"):
		return LinkTypeBlog
	default:
		return LinkTypeArticle
	}
}

// YouTubeThumbnail returns the medium-quality thumbnail URL for a YouTube
// video link, or "" when url is not a recognizable video URL.
// Later patterns win, so a shorts URL overrides a watch match.
func YouTubeThumbnail(url string) string {
	var videoID string
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			videoID = m[1]
		}
	}
	if videoID == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + videoID + "/mqdefault.jpg"
}
