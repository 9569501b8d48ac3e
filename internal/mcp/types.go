// Package mcp exposes the knowledge base and assistant as Model Context
// Protocol tools over stdio or streamable HTTP.
package mcp

// SaveSnippetInput defines the input for the save_snippet tool.
type SaveSnippetInput struct {
	// Category classifies the artifact.
	Category string `json:"category" jsonschema:"required,enum=resume,enum=cover_letter,enum=project,enum=bio,enum=skill,description=Artifact category"`
	// Title is a short human label.
	Title string `json:"title" jsonschema:"required,description=Short human label for the snippet"`
	// Content is the document body.
	Content string `json:"content" jsonschema:"required,description=Full text of the snippet"`
}

// SaveSnippetOutput reports the stored snippet's id.
type SaveSnippetOutput struct {
	ID      string `json:"id"`
	Chunks  int    `json:"chunks"`
	Indexed bool   `json:"indexed"`
}

// GetSnippetInput defines the input for the get_snippet tool.
type GetSnippetInput struct {
	ID string `json:"id" jsonschema:"required,description=Snippet id"`
}

// SnippetOutput is a reconstructed snippet.
type SnippetOutput struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Found    bool   `json:"found"`
}

// ListSnippetsInput takes no parameters.
type ListSnippetsInput struct{}

// SnippetSummary describes a snippet without its content.
type SnippetSummary struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
}

// ListSnippetsOutput lists every snippet in the knowledge base.
type ListSnippetsOutput struct {
	Snippets []SnippetSummary `json:"snippets"`
	Count    int              `json:"count"`
}

// DeleteSnippetInput defines the input for the delete_snippet tool.
type DeleteSnippetInput struct {
	ID string `json:"id" jsonschema:"required,description=Snippet id to delete"`
}

// DeleteSnippetOutput acknowledges a deletion.
type DeleteSnippetOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// RetrieveContextInput defines the input for the retrieve_context tool.
type RetrieveContextInput struct {
	Query string `json:"query" jsonschema:"required,description=Free text to search the knowledge base with"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Number of chunks to retrieve"`
}

// RetrieveContextOutput carries the assembled context block.
type RetrieveContextOutput struct {
	Context string `json:"context"`
	// Message explains an empty context (e.g. index not configured).
	Message string `json:"message,omitempty"`
}

// TailorResumeInput defines the input for the tailor_resume tool.
type TailorResumeInput struct {
	Resume         string `json:"resume" jsonschema:"required,description=Current resume text"`
	JobTitle       string `json:"job_title" jsonschema:"required,description=Target job title"`
	CompanyName    string `json:"company_name" jsonschema:"required,description=Target company"`
	JobDescription string `json:"job_description" jsonschema:"required,description=Target job description"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Chunks of background context to ground the critique with"`
}

// CritiqueCoverLetterInput defines the input for the critique_cover_letter tool.
type CritiqueCoverLetterInput struct {
	CoverLetter    string `json:"cover_letter" jsonschema:"required,description=Current cover letter text"`
	JobTitle       string `json:"job_title" jsonschema:"required,description=Target job title"`
	CompanyName    string `json:"company_name" jsonschema:"required,description=Target company"`
	JobDescription string `json:"job_description" jsonschema:"required,description=Target job description"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Chunks of background context to ground the critique with"`
}

// AnalysisOutput is the structured critique for resumes and cover letters.
type AnalysisOutput struct {
	Relevant      []string `json:"relevant"`
	Irrelevant    []string `json:"irrelevant"`
	MissingFromKB []string `json:"missing_from_kb"`
	Suggestions   []string `json:"suggestions"`
}

// AnswerQuestionInput defines the input for the answer_question tool.
type AnswerQuestionInput struct {
	Question       string `json:"question" jsonschema:"required,description=The application question to answer"`
	JobTitle       string `json:"job_title,omitempty" jsonschema:"description=Target job title (optional)"`
	CompanyName    string `json:"company_name,omitempty" jsonschema:"description=Target company (optional)"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"description=Target job description (optional)"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Chunks of experience to ground the answer with"`
}

// AnswerQuestionOutput carries the drafted answer.
type AnswerQuestionOutput struct {
	Answer string `json:"answer"`
}
