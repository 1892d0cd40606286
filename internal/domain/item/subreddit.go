package item

import "strings"

var educationalSubreddits = map[string]struct{}{
	"programming": {}, "learnprogramming": {}, "coding": {}, "webdev": {},
	"javascript": {}, "python": {}, "java": {}, "cpp": {}, "csharp": {},
	"machinelearning": {}, "datascience": {}, "computerscience": {},
	"learnjavascript": {}, "learnpython": {}, "learnjava": {},
	"webdevelopment": {}, "frontend": {}, "backend": {}, "fullstack": {},
	"devops": {}, "technology": {}, "tech": {}, "softwareengineering": {}, "compsci": {},
}

// IsEducationalSubreddit reports whether a subreddit is on the learning allow-list.
// Accepts names with or without the r/ prefix.
func IsEducationalSubreddit(name string) bool {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "r/")
	_, ok := educationalSubreddits[name]
	return ok
}
