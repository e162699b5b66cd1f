package models

import "time"

// Project is a showcased piece of work. Likes and Comments hold ids only.
type Project struct {
	ID          string
	Title       string
	Description string
	Image       Image
	VideoID     string
	URL         string
	GitHub      string
	Likes       []string
	Comments    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LikedBy reports whether userID is among the project's likes.
func (p *Project) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ProjectInput holds the editable fields of a project.
type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	GitHub      string `json:"github"`
	VideoID     string `json:"videoId"`
}

// ProjectSummary is a project as shown in the list view.
type ProjectSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	GitHub        string `json:"github"`
	URL           string `json:"url"`
	Image         Image  `json:"image"`
	Description   string `json:"description"`
	TotalLikes    int    `json:"totalLikes"`
	TotalComments int    `json:"totalComments"`
	Liked         bool   `json:"liked"`
}

// ProjectDetail is a single project as shown on its own page.
type ProjectDetail struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	GitHub        string `json:"github"`
	URL           string `json:"url"`
	VideoID       string `json:"videoId"`
	Image         Image  `json:"image"`
	TotalLikes    int    `json:"totalLikes"`
	TotalComments int    `json:"totalComments"`
	Liked         bool   `json:"liked"`
}

// ProjectQuery selects a page of projects by title.
type ProjectQuery struct {
	Search string
	Page   int64
	Limit  int64
}
