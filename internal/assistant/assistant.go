// Package assistant wraps the generative model behind the three
// application tasks: tailoring a resume, critiquing a cover letter, and
// drafting answers to application questions. Every task is grounded with a
// retrieved context block produced by the retrieval service.
package assistant

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"google.golang.org/genai"
)

// DefaultModel is the generative model used for all tasks.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You are an expert Career Coach and Resume Writer.
You act as a RAG (Retrieval Augmented Generation) system.
You will be provided with relevant CONTEXT from the user's database.
ALWAYS use this retrieved information to answer queries, aiming for truthfulness and relevance.
Maintain a professional, confident, and results-oriented tone.`

//go:embed prompt/tailor_resume.md
var tailorResumePromptRaw string

//go:embed prompt/critique_letter.md
var critiqueLetterPromptRaw string

//go:embed prompt/answer_question.md
var answerQuestionPromptRaw string

var (
	tailorResumeTmpl   = template.Must(template.New("tailor_resume").Parse(tailorResumePromptRaw))
	critiqueLetterTmpl = template.Must(template.New("critique_letter").Parse(critiqueLetterPromptRaw))
	answerQuestionTmpl = template.Must(template.New("answer_question").Parse(answerQuestionPromptRaw))
)

// JobContext describes the position an application targets.
type JobContext struct {
	JobTitle       string `json:"jobTitle"`
	CompanyName    string `json:"companyName"`
	JobDescription string `json:"jobDescription"`
}

// Analysis is the structured critique produced for resumes and cover
// letters.
type Analysis struct {
	Relevant      []string `json:"relevant"`
	Irrelevant    []string `json:"irrelevant"`
	MissingFromKB []string `json:"missing_from_kb"`
	Suggestions   []string `json:"suggestions"`
}

// analysisSchema constrains critique responses to the Analysis shape.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"relevant": {
			Type:        genai.TypeArray,
			Description: "Points that match the job description",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"irrelevant": {
			Type:        genai.TypeArray,
			Description: "Points that waste space",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"missing_from_kb": {
			Type:        genai.TypeArray,
			Description: "Experience present in the retrieved context but absent from the document",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"suggestions": {
			Type:        genai.TypeArray,
			Description: "Actionable improvements",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"relevant", "irrelevant", "missing_from_kb", "suggestions"},
}

// Client calls the Gemini API for the assistant tasks.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the generative model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates an assistant backed by the Gemini API.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	c := &Client{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TailorResume critiques a resume against a target job, grounded on the
// retrieved context block.
func (c *Client) TailorResume(ctx context.Context, retrieved, resume string, job JobContext) (*Analysis, error) {
	prompt, err := renderDocumentPrompt(tailorResumeTmpl, retrieved, resume, job)
	if err != nil {
		return nil, err
	}
	return c.generateAnalysis(ctx, prompt, 0.2)
}

// CritiqueCoverLetter critiques a cover letter draft against a target job.
func (c *Client) CritiqueCoverLetter(ctx context.Context, retrieved, letter string, job JobContext) (*Analysis, error) {
	prompt, err := renderDocumentPrompt(critiqueLetterTmpl, retrieved, letter, job)
	if err != nil {
		return nil, err
	}
	return c.generateAnalysis(ctx, prompt, 0.3)
}

// AnswerQuestion drafts an answer to an application question from the
// retrieved experience. job is optional.
func (c *Client) AnswerQuestion(ctx context.Context, retrieved, question string, job *JobContext) (string, error) {
	var buf bytes.Buffer
	err := answerQuestionTmpl.Execute(&buf, map[string]any{
		"Question": question,
		"Context":  retrieved,
		"Job":      job,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}

	resp, err := c.generate(ctx, buf.String(), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.5),
	})
	if err != nil {
		return "", err
	}

	answer := resp.Text()
	if answer == "" {
		return "", fmt.Errorf("model returned an empty answer")
	}
	return answer, nil
}

func renderDocumentPrompt(tmpl *template.Template, retrieved, document string, job JobContext) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{
		"Context":  retrieved,
		"Document": document,
		"Job":      job,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// generateAnalysis runs a schema-constrained generation and decodes the
// structured critique.
func (c *Client) generateAnalysis(ctx context.Context, prompt string, temperature float32) (*Analysis, error) {
	resp, err := c.generate(ctx, prompt, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema,
	})
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("model returned an empty response")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	return &analysis, nil
}

func (c *Client) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return resp, nil
}
