package github

import "time"

// Project is a repository reshaped for the portfolio's project grid.
type Project struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Homepage    string             `json:"homepage,omitempty"`
	Language    string             `json:"language,omitempty"`
	Languages   map[string]float64 `json:"languages"`
	Topics      []string           `json:"topics"`
	Stars       int                `json:"stars"`
	Forks       int                `json:"forks"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Day is one cell of the contribution calendar.
type Day struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Weekday int    `json:"weekday"`
	Color   string `json:"color,omitempty"`
}

type Week struct {
	Days []Day `json:"days"`
}

// Calendar is the contribution graph for the trailing year.
type Calendar struct {
	Total int    `json:"total"`
	Weeks []Week `json:"weeks"`
	Days  []Day  `json:"days"`
}

// repoResponse maps the fields of GET /users/{user}/repos we use.
type repoResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Homepage        string    `json:"homepage"`
	Language        string    `json:"language"`
	LanguagesURL    string    `json:"languages_url"`
	Topics          []string  `json:"topics"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Fork            bool      `json:"fork"`
	Archived        bool      `json:"archived"`
	PushedAt        time.Time `json:"pushed_at"`
}
