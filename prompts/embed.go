package prompts

import _ "embed"

//go:embed interview.md.tmpl
var InterviewTemplate string

//go:embed article.md.tmpl
var ArticleTemplate string

//go:embed questions.yaml
var DefaultQuestions []byte
