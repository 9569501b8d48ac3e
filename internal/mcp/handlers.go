package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mike-a-ellis/careerbase/internal/assistant"
	"github.com/mike-a-ellis/careerbase/internal/kb"
	"github.com/mike-a-ellis/careerbase/internal/retrieval"
)

const defaultTopK = retrieval.DefaultTopK

func makeSaveHandler(repo *kb.Repository) func(
	context.Context, *mcp.CallToolRequest, SaveSnippetInput,
) (*mcp.CallToolResult, SaveSnippetOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SaveSnippetInput) (
		*mcp.CallToolResult, SaveSnippetOutput, error,
	) {
		category, err := kb.ParseCategory(input.Category)
		if err != nil {
			return nil, SaveSnippetOutput{}, err
		}
		if input.Content == "" {
			return nil, SaveSnippetOutput{}, fmt.Errorf("content must not be empty")
		}

		snippet := kb.NewSnippet(category, input.Title, input.Content)
		if err := repo.Save(ctx, snippet); err != nil {
			return nil, SaveSnippetOutput{}, fmt.Errorf("save snippet: %w", err)
		}

		return nil, SaveSnippetOutput{
			ID:      snippet.ID,
			Chunks:  repo.ChunkCount(snippet.Content),
			Indexed: repo.Configured(),
		}, nil
	}
}

func makeGetHandler(repo *kb.Repository) func(
	context.Context, *mcp.CallToolRequest, GetSnippetInput,
) (*mcp.CallToolResult, SnippetOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetSnippetInput) (
		*mcp.CallToolResult, SnippetOutput, error,
	) {
		snippet, err := repo.Get(ctx, input.ID)
		if err != nil {
			if errors.Is(err, kb.ErrNotFound) {
				return nil, SnippetOutput{ID: input.ID, Found: false}, nil
			}
			return nil, SnippetOutput{}, fmt.Errorf("get snippet: %w", err)
		}

		return nil, SnippetOutput{
			ID:       snippet.ID,
			Category: string(snippet.Category),
			Title:    snippet.Title,
			Content:  snippet.Content,
			Found:    true,
		}, nil
	}
}

func makeListHandler(repo *kb.Repository) func(
	context.Context, *mcp.CallToolRequest, ListSnippetsInput,
) (*mcp.CallToolResult, ListSnippetsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListSnippetsInput) (
		*mcp.CallToolResult, ListSnippetsOutput, error,
	) {
		snippets, err := repo.ListAll(ctx)
		if err != nil {
			return nil, ListSnippetsOutput{}, fmt.Errorf("list snippets: %w", err)
		}

		summaries := make([]SnippetSummary, 0, len(snippets))
		for _, s := range snippets {
			summaries = append(summaries, SnippetSummary{
				ID:       s.ID,
				Category: string(s.Category),
				Title:    s.Title,
			})
		}

		return nil, ListSnippetsOutput{
			Snippets: summaries,
			Count:    len(summaries),
		}, nil
	}
}

func makeDeleteHandler(repo *kb.Repository) func(
	context.Context, *mcp.CallToolRequest, DeleteSnippetInput,
) (*mcp.CallToolResult, DeleteSnippetOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeleteSnippetInput) (
		*mcp.CallToolResult, DeleteSnippetOutput, error,
	) {
		if err := repo.Delete(ctx, input.ID); err != nil {
			return nil, DeleteSnippetOutput{}, fmt.Errorf("delete snippet: %w", err)
		}
		return nil, DeleteSnippetOutput{ID: input.ID, Deleted: true}, nil
	}
}

func makeRetrieveHandler(retriever *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, RetrieveContextInput,
) (*mcp.CallToolResult, RetrieveContextOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RetrieveContextInput) (
		*mcp.CallToolResult, RetrieveContextOutput, error,
	) {
		topK := input.TopK
		if topK <= 0 {
			topK = defaultTopK
		}

		block := retriever.Retrieve(ctx, input.Query, topK)
		out := RetrieveContextOutput{Context: block}
		if block == "" {
			out.Message = "No context retrieved. The knowledge base may be empty or the index not configured."
		}
		return nil, out, nil
	}
}

func makeTailorResumeHandler(gen *assistant.Client, retriever *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, TailorResumeInput,
) (*mcp.CallToolResult, AnalysisOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input TailorResumeInput) (
		*mcp.CallToolResult, AnalysisOutput, error,
	) {
		job := assistant.JobContext{
			JobTitle:       input.JobTitle,
			CompanyName:    input.CompanyName,
			JobDescription: input.JobDescription,
		}
		retrieved := retrieveForJob(ctx, retriever, input.JobDescription+" "+input.JobTitle, input.TopK)

		analysis, err := gen.TailorResume(ctx, retrieved, input.Resume, job)
		if err != nil {
			return nil, AnalysisOutput{}, fmt.Errorf("tailor resume: %w", err)
		}
		return nil, analysisOutput(analysis), nil
	}
}

func makeCritiqueLetterHandler(gen *assistant.Client, retriever *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, CritiqueCoverLetterInput,
) (*mcp.CallToolResult, AnalysisOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CritiqueCoverLetterInput) (
		*mcp.CallToolResult, AnalysisOutput, error,
	) {
		job := assistant.JobContext{
			JobTitle:       input.JobTitle,
			CompanyName:    input.CompanyName,
			JobDescription: input.JobDescription,
		}
		retrieved := retrieveForJob(ctx, retriever, input.JobDescription+" "+input.JobTitle, input.TopK)

		analysis, err := gen.CritiqueCoverLetter(ctx, retrieved, input.CoverLetter, job)
		if err != nil {
			return nil, AnalysisOutput{}, fmt.Errorf("critique cover letter: %w", err)
		}
		return nil, analysisOutput(analysis), nil
	}
}

func makeAnswerHandler(gen *assistant.Client, retriever *retrieval.Service) func(
	context.Context, *mcp.CallToolRequest, AnswerQuestionInput,
) (*mcp.CallToolResult, AnswerQuestionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnswerQuestionInput) (
		*mcp.CallToolResult, AnswerQuestionOutput, error,
	) {
		var job *assistant.JobContext
		if input.JobTitle != "" || input.CompanyName != "" || input.JobDescription != "" {
			job = &assistant.JobContext{
				JobTitle:       input.JobTitle,
				CompanyName:    input.CompanyName,
				JobDescription: input.JobDescription,
			}
		}
		retrieved := retrieveForJob(ctx, retriever, input.Question, input.TopK)

		answer, err := gen.AnswerQuestion(ctx, retrieved, input.Question, job)
		if err != nil {
			return nil, AnswerQuestionOutput{}, fmt.Errorf("answer question: %w", err)
		}
		return nil, AnswerQuestionOutput{Answer: answer}, nil
	}
}

// retrieveForJob fetches grounding context. Retrieval is best-effort: an
// empty block means the generation proceeds ungrounded.
func retrieveForJob(ctx context.Context, retriever *retrieval.Service, query string, topK int) string {
	if topK <= 0 {
		topK = defaultTopK
	}
	return retriever.Retrieve(ctx, query, topK)
}

func analysisOutput(a *assistant.Analysis) AnalysisOutput {
	out := AnalysisOutput{
		Relevant:      a.Relevant,
		Irrelevant:    a.Irrelevant,
		MissingFromKB: a.MissingFromKB,
		Suggestions:   a.Suggestions,
	}
	// Non-nil slices keep the JSON arrays present even when empty.
	if out.Relevant == nil {
		out.Relevant = []string{}
	}
	if out.Irrelevant == nil {
		out.Irrelevant = []string{}
	}
	if out.MissingFromKB == nil {
		out.MissingFromKB = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	return out
}
