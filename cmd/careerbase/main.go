// Package main provides the careerbase CLI for managing the career
// knowledge base.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mike-a-ellis/careerbase/internal/assistant"
	"github.com/mike-a-ellis/careerbase/internal/chunker"
	"github.com/mike-a-ellis/careerbase/internal/config"
	"github.com/mike-a-ellis/careerbase/internal/embedding"
	"github.com/mike-a-ellis/careerbase/internal/ghimport"
	"github.com/mike-a-ellis/careerbase/internal/index"
	"github.com/mike-a-ellis/careerbase/internal/kb"
	"github.com/mike-a-ellis/careerbase/internal/markdown"
	"github.com/mike-a-ellis/careerbase/internal/retrieval"
)

var rootCmd = &cobra.Command{
	Use:   "careerbase",
	Short: "Personal career knowledge base with semantic retrieval",
	Long: `CLI for managing a personal knowledge base of career artifacts
(resumes, cover letters, project notes, bios, skills) stored in a
vector index and retrieved by semantic similarity.

Environment variables:
  GEMINI_API_KEY       Gemini key for embeddings and generation
  OPENAI_API_KEY       OpenAI key when CAREERBASE_EMBEDDER=openai
  CAREERBASE_INDEX     pinecone | qdrant | memory (default: pinecone)
  PINECONE_API_KEY     Pinecone API key
  PINECONE_INDEX_URL   Pinecone index base URL
  QDRANT_HOST          Qdrant hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  GITHUB_TOKEN         GitHub token for the import command (optional)`,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a snippet to the knowledge base",
	RunE:  runAdd,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one snippet by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every snippet in the knowledge base",
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snippet and all of its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var importCmd = &cobra.Command{
	Use:   "import <owner/repo>",
	Short: "Import markdown files from a GitHub repository",
	Long: `Imports every .md file under a repository directory as snippets.
The first heading of each file becomes the snippet title; files without
a heading fall back to their filename.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <query>",
	Short: "Semantically search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

var tailorCmd = &cobra.Command{
	Use:   "tailor-resume <resume-file>",
	Short: "Critique a resume against a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runTailor,
}

var critiqueCmd = &cobra.Command{
	Use:   "critique-letter <letter-file>",
	Short: "Critique a cover letter draft against a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runCritique,
}

var answerCmd = &cobra.Command{
	Use:   "answer <question>",
	Short: "Draft an answer to an application question from stored experience",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnswer,
}

var (
	flagCategory string
	flagTitle    string
	flagContent  string
	flagFile     string
	flagDir      string
	flagTopK     int
	flagJobTitle string
	flagCompany  string
	flagJobDesc  string
)

func init() {
	addCmd.Flags().StringVar(&flagCategory, "category", "", "snippet category: resume, cover_letter, project, bio, skill")
	addCmd.Flags().StringVar(&flagTitle, "title", "", "snippet title")
	addCmd.Flags().StringVar(&flagContent, "content", "", "snippet content (mutually exclusive with --file)")
	addCmd.Flags().StringVar(&flagFile, "file", "", "read content from a file")
	addCmd.MarkFlagRequired("category")
	addCmd.MarkFlagRequired("title")

	importCmd.Flags().StringVar(&flagCategory, "category", string(kb.CategoryProject), "category for every imported snippet")
	importCmd.Flags().StringVar(&flagDir, "dir", "", "directory within the repository to import from")

	retrieveCmd.Flags().IntVar(&flagTopK, "top-k", 5, "number of chunks to retrieve")

	for _, cmd := range []*cobra.Command{tailorCmd, critiqueCmd, answerCmd} {
		cmd.Flags().StringVar(&flagJobTitle, "job-title", "", "target job title")
		cmd.Flags().StringVar(&flagCompany, "company", "", "target company name")
		cmd.Flags().StringVar(&flagJobDesc, "job-description", "", "target job description (or @file to read one)")
		cmd.Flags().IntVar(&flagTopK, "top-k", 5, "chunks of background context to retrieve")
	}
	tailorCmd.MarkFlagRequired("job-title")
	tailorCmd.MarkFlagRequired("job-description")
	critiqueCmd.MarkFlagRequired("job-title")
	critiqueCmd.MarkFlagRequired("job-description")

	rootCmd.AddCommand(addCmd, getCmd, listCmd, deleteCmd, importCmd, retrieveCmd, tailorCmd, critiqueCmd, answerCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// components bundles everything a subcommand can need. Close releases
// the index connection when the backend holds one.
type components struct {
	cfg       *config.Config
	repo      *kb.Repository
	retriever *retrieval.Service
	index     index.Index
	embedder  embedding.Embedder
}

func (c *components) Close() {
	if q, ok := c.index.(*index.Qdrant); ok {
		q.Close()
	}
}

func setup(ctx context.Context) (*components, error) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var embedder embedding.Embedder
	var err error
	switch cfg.Embedder {
	case config.EmbedderOpenAI:
		embedder, err = embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, 0)
	default:
		embedder, err = embedding.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	var idx index.Index
	if cfg.IndexConfigured() {
		switch cfg.IndexBackend {
		case config.IndexQdrant:
			q, qerr := index.NewQdrant(cfg.QdrantHost, cfg.QdrantPort, embedder.Dimension())
			if qerr != nil {
				return nil, fmt.Errorf("connect to Qdrant: %w", qerr)
			}
			if qerr := q.EnsureCollection(ctx); qerr != nil {
				return nil, fmt.Errorf("ensure collection: %w", qerr)
			}
			idx = q
		case config.IndexMemory:
			idx = index.NewMemory()
		default:
			idx, err = index.NewPinecone(cfg.PineconeIndexURL, cfg.PineconeAPIKey)
			if err != nil {
				return nil, fmt.Errorf("create Pinecone client: %w", err)
			}
		}
	} else {
		fmt.Fprintln(os.Stderr, "Warning: index not configured, writes will be skipped and reads return nothing")
	}

	chunk, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	return &components{
		cfg:       cfg,
		repo:      kb.NewRepository(chunk, embedder, idx, logger),
		retriever: retrieval.NewService(embedder, idx, logger),
		index:     idx,
		embedder:  embedder,
	}, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	category, err := kb.ParseCategory(flagCategory)
	if err != nil {
		return err
	}

	content := flagContent
	if flagFile != "" {
		data, err := os.ReadFile(flagFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", flagFile, err)
		}
		content = string(data)
	}
	if content == "" {
		return fmt.Errorf("provide --content or --file")
	}

	snippet := kb.NewSnippet(category, flagTitle, content)
	if err := c.repo.Save(ctx, snippet); err != nil {
		return err
	}

	fmt.Printf("Saved %s (%d chunks)\n", snippet.ID, c.repo.ChunkCount(content))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	snippet, err := c.repo.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", snippet.ID)
	fmt.Printf("Category: %s\n", snippet.Category)
	fmt.Printf("Title:    %s\n", snippet.Title)
	fmt.Println()
	fmt.Println(snippet.Content)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	snippets, err := c.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(snippets) == 0 {
		fmt.Println("Knowledge base is empty.")
		return nil
	}

	for _, s := range snippets {
		fmt.Printf("%s  %-12s  %s\n", s.ID, s.Category, s.Title)
	}
	fmt.Printf("\n%d snippets\n", len(snippets))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.repo.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok {
		return fmt.Errorf("repository must be owner/repo, got %q", args[0])
	}

	category, err := kb.ParseCategory(flagCategory)
	if err != nil {
		return err
	}

	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	ghClient, err := ghimport.NewClient(c.cfg.GitHubToken)
	if err != nil {
		return fmt.Errorf("create GitHub client: %w", err)
	}
	fetcher := ghimport.NewFetcher(ghClient, owner, repo, flagDir)

	fmt.Printf("Listing markdown files in %s/%s...\n", owner, repo)
	paths, err := fetcher.ListMarkdown(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d files\n\n", len(paths))

	imported := 0
	for _, p := range paths {
		file, err := fetcher.FetchFile(ctx, p)
		if err != nil {
			fmt.Printf("  skip %s: %v\n", p, err)
			continue
		}

		title, ok := markdown.Title([]byte(file.Content))
		if !ok {
			title = strings.TrimSuffix(path.Base(p), ".md")
		}

		snippet := kb.NewSnippet(category, title, file.Content)
		if err := c.repo.Save(ctx, snippet); err != nil {
			fmt.Printf("  skip %s: %v\n", p, err)
			continue
		}
		fmt.Printf("  %s -> %s (%q)\n", p, snippet.ID, title)
		imported++
	}

	fmt.Printf("\nImported %d/%d files in %s\n", imported, len(paths), time.Since(start).Round(time.Second))
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	block := c.retriever.Retrieve(ctx, strings.Join(args, " "), flagTopK)
	if block == "" {
		fmt.Println("No context retrieved.")
		return nil
	}
	fmt.Println(block)
	return nil
}

func runTailor(cmd *cobra.Command, args []string) error {
	return runAnalysis(cmd, args[0], func(ctx context.Context, gen *assistant.Client, retrieved, document string, job assistant.JobContext) (*assistant.Analysis, error) {
		return gen.TailorResume(ctx, retrieved, document, job)
	})
}

func runCritique(cmd *cobra.Command, args []string) error {
	return runAnalysis(cmd, args[0], func(ctx context.Context, gen *assistant.Client, retrieved, document string, job assistant.JobContext) (*assistant.Analysis, error) {
		return gen.CritiqueCoverLetter(ctx, retrieved, document, job)
	})
}

func runAnalysis(cmd *cobra.Command, documentFile string, analyze func(context.Context, *assistant.Client, string, string, assistant.JobContext) (*assistant.Analysis, error)) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if c.cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for analysis commands")
	}

	data, err := os.ReadFile(documentFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", documentFile, err)
	}

	jobDesc, err := resolveJobDescription(flagJobDesc)
	if err != nil {
		return err
	}
	job := assistant.JobContext{
		JobTitle:       flagJobTitle,
		CompanyName:    flagCompany,
		JobDescription: jobDesc,
	}

	gen, err := assistant.NewClient(ctx, c.cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("create assistant client: %w", err)
	}

	retrieved := c.retriever.Retrieve(ctx, jobDesc+" "+flagJobTitle, flagTopK)

	analysis, err := analyze(ctx, gen, retrieved, string(data), job)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := setup(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if c.cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for analysis commands")
	}

	question := strings.Join(args, " ")

	var job *assistant.JobContext
	if flagJobTitle != "" || flagCompany != "" || flagJobDesc != "" {
		jobDesc, err := resolveJobDescription(flagJobDesc)
		if err != nil {
			return err
		}
		job = &assistant.JobContext{
			JobTitle:       flagJobTitle,
			CompanyName:    flagCompany,
			JobDescription: jobDesc,
		}
	}

	gen, err := assistant.NewClient(ctx, c.cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("create assistant client: %w", err)
	}

	retrieved := c.retriever.Retrieve(ctx, question, flagTopK)

	answer, err := gen.AnswerQuestion(ctx, retrieved, question, job)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

// resolveJobDescription supports @file syntax so long descriptions don't
// have to be pasted onto the command line.
func resolveJobDescription(v string) (string, error) {
	if !strings.HasPrefix(v, "@") {
		return v, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(v, "@"))
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	return string(data), nil
}
