// Package content holds the portfolio's static copy: biography, skills,
// work history, education and project blurbs.
package content

import "strings"

type Job struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	LogoPath     string   `json:"logoPath"`
	BulletPoints []string `json:"bulletPoints"`
}

type Education struct {
	Degree       string   `json:"degree"`
	Institution  string   `json:"institution"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	LogoPath     string   `json:"logoPath"`
	BulletPoints []string `json:"bulletPoints"`
}

type ProjectBlurb struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

type SkillGroup struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

type Profile struct {
	Name     string         `json:"name"`
	Headline string         `json:"headline"`
	About    string         `json:"about"`
	Skills   []SkillGroup   `json:"skills"`
	Projects []ProjectBlurb `json:"projects"`
}

// flatten collapses the indentation of multi-line raw strings.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var aboutMe = `I love building software that's both useful and fun, and I'm always curious about how things work behind the scenes. 
	Most of my projects start with a simple idea and turn into a chance to learn something new, whether it's exploring a 
	different language, experimenting with tools, or solving tricky problems.
	When I'm not coding, you'll usually find me training Muay Thai, shooting pool with friends, 
	or chasing down a new challenge outside the screen.`

var projectBlurbs = []ProjectBlurb{
	{
		ID: "mail-tui",
		Summary: `A terminal-based email client built in Go with fuzzyfinder capabilities
	using the Charmbracelet TUI framework and go-imap.`,
	},
	{
		ID: "music-tui",
		Summary: `A terminal-based music streaming application built in Go with an elegant TUI 
	interface, leveraging yt-dlp and mpv for seamless YouTube Music playback directly from the command line.`,
	},
	{
		ID: "game-recommender",
		Summary: `A machine learning-powered web application that uses TF-IDF vectorization and cosine 
	similarity to recommend games based on content analysis, featuring interactive data visualizations and 
	real-time filtering by user reviews and ratings.`,
	},
	{
		ID: "portfolio",
		Summary: `A portfolio website backed by Go and Gin, with a page-view counter on Redis,
	a GitHub-powered project feed and contribution graph, and a contact form.`,
	},
}

var skills = []SkillGroup{
	{Name: "Languages", Skills: []string{"Go", "Python", "JavaScript", "TypeScript", "SQL"}},
	{Name: "Backend", Skills: []string{"Gin", "REST", "GraphQL", "Redis", "SQLite", "PostgreSQL"}},
	{Name: "Frontend", Skills: []string{"HTMX", "Alpine.js", "Tailwind CSS", "React"}},
	{Name: "Tooling", Skills: []string{"Git", "Docker", "Linux", "CI/CD"}},
}

var jobs = []Job{
	{
		Title:     "Presentation Expert",
		Company:   "Target",
		StartDate: "Aug 2023",
		EndDate:   "Present",
		LogoPath:  "images/TargetLogo.jpg",
		BulletPoints: []string{
			"Executed over 300 merchandising transitions on tight timelines by organizing team workflows and adapting quickly to changing priorities",
			"Boosted operational efficiency by managing backroom inventory processes and streamlining communication between floor and logistics teams",
			"Enhanced pricing and signage accuracy across departments by standardizing daily checks and collaborating cross-functionally",
		},
	},
	{
		Title:     "Manager",
		Company:   "Jasons Catered Events",
		StartDate: "Aug 2016",
		EndDate:   "Present",
		LogoPath:  "images/jasonsCateringLogo.png",
		BulletPoints: []string{
			"Improved client satisfaction by coordinating customized menus and ensuring all dietary requirements were accurately met",
			"Supported event technology by troubleshooting AV equipment and managing digital order tracking systems, reducing technical delays and improving communication",
			"Maintained supply inventory and coordinated timely delivery between venues, optimizing resource allocation and minimizing downtime.",
		},
	},
}

var education = []Education{
	{
		Degree:      "Bachelor of Computer Science",
		Institution: "Western Governors University",
		StartDate:   "Sept 2019",
		EndDate:     "May 2023",
		LogoPath:    "images/WGU-logo.png",
		BulletPoints: []string{
			"Graduated Magna Cum Laude with 3.8 GPA",
			"Relevant coursework: Data Structures, Algorithms, Web Development",
			"Senior project: Machine Learning recommendation system",
		},
	},
	{
		Degree:      "Project Management",
		Institution: "Comptia",
		StartDate:   "July 2022",
		EndDate:     "Present",
		LogoPath:    "images/comptiaCert.png",
		BulletPoints: []string{
			"Certified in agile project management methodology",
			"Verification code: SRRRPGBSWBRQCCDJ",
		},
	},
}

func GetProfile() Profile {
	blurbs := make([]ProjectBlurb, len(projectBlurbs))
	for i, b := range projectBlurbs {
		blurbs[i] = ProjectBlurb{ID: b.ID, Summary: flatten(b.Summary)}
	}
	return Profile{
		Name:     "Zach",
		Headline: "Software developer building tools for the terminal and the web",
		About:    flatten(aboutMe),
		Skills:   skills,
		Projects: blurbs,
	}
}

func GetExperience() []Job {
	return jobs
}

func GetEducation() []Education {
	return education
}
