package musicbrainz

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// The catalog may answer with either XML or JSON depending on server
// negotiation. Both wire shapes are normalized here, at ingest, into the
// same candidate records; nothing downstream branches on wire format.

func looksLikeXML(body []byte) bool {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '<':
			return true
		default:
			return false
		}
	}
	return false
}

type rawArtist struct {
	ID           string
	Name         string
	CatalogScore int
}

type xmlArtistSearch struct {
	XMLName xml.Name `xml:"metadata"`
	Artists []struct {
		ID    string `xml:"id,attr"`
		Score string `xml:"score,attr"`
		Name  string `xml:"name"`
	} `xml:"artist-list>artist"`
}

type jsonArtistSearch struct {
	Artists []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Score int    `json:"score"`
	} `json:"artists"`
}

func parseArtists(body []byte) ([]rawArtist, error) {
	if looksLikeXML(body) {
		var doc xmlArtistSearch
		if err := xml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse artist XML: %w", err)
		}
		out := make([]rawArtist, 0, len(doc.Artists))
		for _, a := range doc.Artists {
			out = append(out, rawArtist{
				ID:           a.ID,
				Name:         a.Name,
				CatalogScore: atoiOr(a.Score, 100),
			})
		}
		return out, nil
	}

	var doc jsonArtistSearch
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse artist JSON: %w", err)
	}
	out := make([]rawArtist, 0, len(doc.Artists))
	for _, a := range doc.Artists {
		score := a.Score
		if score == 0 {
			score = 100
		}
		out = append(out, rawArtist{ID: a.ID, Name: a.Name, CatalogScore: score})
	}
	return out, nil
}

type xmlNameCredit struct {
	JoinPhrase string `xml:"joinphrase,attr"`
	Name       string `xml:"artist>name"`
}

type xmlReleaseGroupSearch struct {
	XMLName xml.Name `xml:"metadata"`
	Groups  []struct {
		ID               string          `xml:"id,attr"`
		Score            string          `xml:"score,attr"`
		Title            string          `xml:"title"`
		FirstReleaseDate string          `xml:"first-release-date"`
		NameCredits      []xmlNameCredit `xml:"artist-credit>name-credit"`
		RelationTargets  []string        `xml:"relation-list>relation>target"`
	} `xml:"release-group-list>release-group"`
}

type jsonReleaseGroupSearch struct {
	ReleaseGroups []struct {
		ID               string `json:"id"`
		Score            int    `json:"score"`
		Title            string `json:"title"`
		FirstReleaseDate string `json:"first-release-date"`
		ArtistCredit     []struct {
			Name       string `json:"name"`
			JoinPhrase string `json:"joinphrase"`
		} `json:"artist-credit"`
		Relations []struct {
			URL struct {
				Resource string `json:"resource"`
			} `json:"url"`
		} `json:"relations"`
		TrackCount int `json:"track-count"`
	} `json:"release-groups"`
}

func parseReleaseGroups(body []byte) ([]CandidateReleaseGroup, error) {
	if looksLikeXML(body) {
		var doc xmlReleaseGroupSearch
		if err := xml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse release-group XML: %w", err)
		}
		out := make([]CandidateReleaseGroup, 0, len(doc.Groups))
		for _, g := range doc.Groups {
			var credit strings.Builder
			for _, nc := range g.NameCredits {
				credit.WriteString(nc.Name)
				credit.WriteString(nc.JoinPhrase)
			}
			out = append(out, CandidateReleaseGroup{
				ID:               g.ID,
				Title:            g.Title,
				ArtistCredit:     credit.String(),
				CatalogScore:     atoiOr(g.Score, 100),
				URLs:             g.RelationTargets,
				FirstReleaseDate: g.FirstReleaseDate,
			})
		}
		return out, nil
	}

	var doc jsonReleaseGroupSearch
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse release-group JSON: %w", err)
	}
	out := make([]CandidateReleaseGroup, 0, len(doc.ReleaseGroups))
	for _, g := range doc.ReleaseGroups {
		var credit strings.Builder
		for _, ac := range g.ArtistCredit {
			credit.WriteString(ac.Name)
			credit.WriteString(ac.JoinPhrase)
		}
		var urls []string
		for _, rel := range g.Relations {
			if rel.URL.Resource != "" {
				urls = append(urls, rel.URL.Resource)
			}
		}
		score := g.Score
		if score == 0 {
			score = 100
		}
		out = append(out, CandidateReleaseGroup{
			ID:               g.ID,
			Title:            g.Title,
			ArtistCredit:     credit.String(),
			CatalogScore:     score,
			URLs:             urls,
			FirstReleaseDate: g.FirstReleaseDate,
			TrackCount:       g.TrackCount,
		})
	}
	return out, nil
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
