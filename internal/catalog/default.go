package catalog

import "path"

// PackageDir is the templated source package directory.
const PackageDir = "src/{{ cookiecutter.package_name }}"

// ManifestFile is the root manifest describing every flag and its domain.
const ManifestFile = "cookiecutter.json"

// TemplateVersionFile records which template version produced a tree.
const TemplateVersionFile = ".template-version"

// ReadmeFile receives the managed feature block.
const ReadmeFile = "README.md"

// Version is the template version stamped into generated trees.
const Version = "1.0.0"

// TemplateName identifies this layout in the remote template index.
const TemplateName = "ai-service"

// Flag names.
const (
	UseGenAI          = "use_genai"
	UseAgents         = "use_agents"
	UseML             = "use_ml"
	UsePrompts        = "use_prompts"
	UseClassification = "use_classification"
	UseForecasting    = "use_forecasting"
	UseRegression     = "use_regression"
	UseSentiment      = "use_sentiment"
	IncludeRAG        = "include_rag"
	UseSummarization  = "use_summarization"
	UseMLflow         = "use_mlflow"
	UseFeatureStore   = "use_feature_store"
	UseVectorDB       = "use_vector_db"
	UseMessaging      = "use_messaging"
)

// String answer names.
const (
	RepoName    = "repo_name"
	PackageName = "package_name"
	Description = "project_description"
)

// On requires flag to be on.
func On(flag string) Literal { return Literal{Flag: flag, Want: true} }

// Off requires flag to be off.
func Off(flag string) Literal { return Literal{Flag: flag, Want: false} }

type builder struct {
	entries []Entry
}

func (b *builder) dir(p string, when ...Literal) {
	b.entries = append(b.entries, Entry{Path: p, Dir: true, When: when})
}

func (b *builder) file(p, content string, when ...Literal) {
	b.entries = append(b.entries, Entry{Path: p, Content: content, When: when})
}

// stubs adds one header-only file per name under dir.
func (b *builder) stubs(dir string, names []string, when ...Literal) {
	for _, n := range names {
		b.file(path.Join(dir, n), stub(n), when...)
	}
}

// Default returns the catalog of the AI service starter layout.
func Default() *Catalog {
	c := &Catalog{
		TemplateVersion: Version,
		Flags: []Flag{
			{Name: LightweightMode, Default: false, Help: "collapse core and pipelines into single modules"},
			{Name: UseGenAI, Default: true, Help: "LLM models, providers and the genai router"},
			{Name: UseAgents, Default: true, Help: "agent manager, tool interfaces and the agent router"},
			{Name: UseML, Default: true, Help: "classic ML models and the ml router"},
			{Name: UsePrompts, Default: true, Help: "prompt templates, formatters and evaluators"},
			{Name: UseClassification, Default: true, Help: "classification model and service"},
			{Name: UseForecasting, Default: true, Help: "forecasting model and service"},
			{Name: UseRegression, Default: true, Help: "regression model"},
			{Name: UseSentiment, Default: true, Help: "sentiment service"},
			{Name: IncludeRAG, Default: true, Help: "retrieval-augmented generation service"},
			{Name: UseSummarization, Default: true, Help: "summarization service"},
			{Name: UseMLflow, Default: true, Help: "experiment tracking"},
			{Name: UseFeatureStore, Default: true, Help: "feature store adapter"},
			{Name: UseVectorDB, Default: true, Help: "vector database adapter"},
			{Name: UseMessaging, Default: true, Help: "message queue adapter"},
		},
		Answers: []Answer{
			{Name: RepoName, Default: "ai-sentiment-analysis", Help: "repository name"},
			{Name: PackageName, Default: "ai_sentiment_analysis", Help: "python package name"},
			{Name: Description, Default: "AI service for sentiment analysis", Help: "one-line project description"},
		},
		CopyWithoutRender: []string{"*.html", "*.js"},
	}
	c.Entries = defaultEntries(c)
	c.Rules = defaultRules()
	return c
}

func defaultEntries(c *Catalog) []Entry {
	b := &builder{}

	// Root files
	b.file(ManifestFile, c.Manifest())
	b.file("pyproject.toml", pyprojectStub)
	b.file(ReadmeFile, readmeStub)
	b.file("LICENSE", "MIT License\n")
	b.file("Makefile", makefileStub)
	b.file(".gitignore", gitignoreStub)
	b.file(".env.example", "# .env.example\n")
	b.file(".pre-commit-config.yaml", "# pre-commit config\n")
	b.file("bitbucket-pipelines.yml", "# Bitbucket Pipelines\n")
	b.file(TemplateVersionFile, c.TemplateVersion+"\n")

	b.file("configs/dev.yaml", "# Development environment config\n")
	b.file("configs/staging.yaml", "# Staging environment config\n")
	b.file("configs/prod.yaml", "# Production environment config\n")

	b.file("docs/index.md", "# Documentation Home\n")
	b.file("docs/api.md", "# API Docs\n")
	b.file("docs/user_guide.md", "# User Guide\n")
	b.file("docs/development.md", "# Development Guide\n")
	b.file("docs/testing.md", "# Testing Strategy\n")
	b.file("docs/template_updates.md", "# Template Updates\n")
	b.file("docs/adr/adr-001-template.md", "# ADR Template\n")

	b.file("notebooks/exploration/README.md", "# Data Exploration Notebooks\n")
	b.file("notebooks/prototypes/README.md", "# Prototypes\n")

	b.file("docker/api.Dockerfile", "# FastAPI Dockerfile\n")
	b.file("docker/job.Dockerfile", "# Job Dockerfile\n")
	b.file("docker/compose.yaml", "# Docker Compose\n")
	b.dir("k8s/base")
	for _, env := range []string{"dev", "staging", "prod"} {
		b.dir("k8s/overlays/" + env)
	}
	b.file("scripts/migrate_db.py", "# DB Migration Script\n")
	b.file("scripts/seed_demo_data.py", "# Seed Demo Data\n")
	b.file("scripts/update_from_template.py", updateFromTemplateStub)

	b.file("model_registry/README.md", "# Model Registry Info\n")

	for _, sub := range []string{"unit/api", "unit/core", "unit/services", "unit/models",
		"integration/api", "integration/pipelines"} {
		b.dir("tests/" + sub)
	}
	b.file("tests/e2e/test_api_flows.py", "# E2E Test Example\n")
	b.file("tests/fixtures/samples.json", "[]\n")
	b.file("tests/fixtures/responses.json", "[]\n")

	sourceEntries(b)
	return b.entries
}

func sourceEntries(b *builder) {
	pkg := PackageDir
	lw, full := On(LightweightMode), Off(LightweightMode)

	b.file(pkg+"/__init__.py", "")
	b.file(pkg+"/__main__.py", "# Entry point\n")
	b.file(pkg+"/version.py", "# Version info\n")
	b.file(pkg+"/run.py", runStub)

	b.file(pkg+"/config/__init__.py", "")
	b.file(pkg+"/config/settings.py", "# Pydantic settings\n")
	b.file(pkg+"/config/environment.py", "# Env loader\n")

	b.file(pkg+"/core.py", "# Collapsed core domain\n", lw)
	b.stubs(pkg+"/core", []string{"__init__.py", "schemas.py", "tasks.py", "errors.py", "taxonomy.py", "validation.py"}, full)

	b.stubs(pkg+"/prompts", []string{"__init__.py", "templates.py", "formatters.py", "evaluators.py"}, On(UsePrompts))

	models := pkg + "/models"
	b.file(models+"/__init__.py", "")
	b.stubs(models+"/genai", []string{"__init__.py", "llm_base.py", "text_generation.py", "embeddings.py"}, On(UseGenAI))
	b.stubs(models+"/agents", []string{"__init__.py", "agent_manager.py", "tool_interfaces.py", "agent_protocols.py"}, On(UseAgents))

	ml := models + "/ml"
	b.file(ml+"/__init__.py", "", On(UseML))
	for _, task := range []struct{ name, flag string }{
		{"classification", UseClassification},
		{"forecasting", UseForecasting},
		{"regression", UseRegression},
	} {
		b.file(ml+"/"+task.name+".py", "# Collapsed "+task.name+" module\n", On(UseML), lw, On(task.flag))
		b.stubs(ml+"/"+task.name, []string{"model.py", "train.py", "predict.py"}, On(UseML), full, On(task.flag))
	}

	services := pkg + "/services"
	b.file(services+"/__init__.py", "")
	b.file(services+"/rag_service.py", stub("rag_service.py"), On(IncludeRAG))
	b.file(services+"/summarization_service.py", stub("summarization_service.py"), On(UseSummarization))
	b.file(services+"/classification_service.py", stub("classification_service.py"), On(UseClassification))
	b.file(services+"/forecasting_service.py", stub("forecasting_service.py"), On(UseForecasting))
	b.file(services+"/sentiment_service.py", stub("sentiment_service.py"), On(UseSentiment))

	api := pkg + "/api"
	b.stubs(api, []string{"__init__.py", "app.py", "middleware.py", "models.py"})
	b.file(api+"/routers/__init__.py", "")
	b.file(api+"/routers/health_router.py", healthRouterStub)
	b.file(api+"/routers/genai_router.py", stub("genai_router.py"), On(UseGenAI))
	b.file(api+"/routers/agent_router.py", stub("agent_router.py"), On(UseAgents))
	b.file(api+"/routers/ml_router.py", stub("ml_router.py"), On(UseML))

	b.stubs(pkg+"/cli", []string{"__init__.py", "commands.py", "app.py"})

	b.file(pkg+"/pipelines.py", "# Collapsed pipelines module\n", lw)
	b.stubs(pkg+"/pipelines", []string{"__init__.py", "data_ingestion.py", "preprocessing.py", "training.py", "evaluation.py"}, full)

	infra := pkg + "/infrastructure"
	b.file(infra+"/__init__.py", "")
	b.stubs(infra+"/llm_providers", []string{"__init__.py", "base.py", "openai.py", "anthropic.py", "gemini.py"}, On(UseGenAI))
	b.stubs(infra+"/tracking", []string{"__init__.py", "tracker.py"}, On(UseMLflow))
	b.file(infra+"/storage/__init__.py", "")
	b.file(infra+"/storage/feature_store.py", stub("feature_store.py"), On(UseFeatureStore))
	b.file(infra+"/storage/vector_db.py", stub("vector_db.py"), On(UseVectorDB))
	b.stubs(infra+"/messaging", []string{"__init__.py", "queue.py"}, On(UseMessaging))

	b.stubs(pkg+"/utils", []string{"__init__.py", "logging.py", "result.py", "retry.py", "timers.py", "helpers.py"})

	b.file(pkg+"/data/samples/prompts.json", "[]\n")
	b.file(pkg+"/data/samples/responses.json", "[]\n")
	b.file(pkg+"/data/samples/report.html", reportHTMLStub)
}

func defaultRules() []Rule {
	pkg := PackageDir
	return []Rule{
		{Flag: UsePrompts, Paths: []string{pkg + "/prompts"}},
		{Flag: IncludeRAG, Paths: []string{pkg + "/services/rag_service.py"}},
		{Flag: UseSummarization, Paths: []string{pkg + "/services/summarization_service.py"}},
		{Flag: UseGenAI, Paths: []string{
			pkg + "/models/genai",
			pkg + "/api/routers/genai_router.py",
			pkg + "/infrastructure/llm_providers",
		}},
		{Flag: UseAgents, Paths: []string{
			pkg + "/models/agents",
			pkg + "/api/routers/agent_router.py",
		}},
		{Flag: UseML, Paths: []string{
			pkg + "/models/ml",
			pkg + "/api/routers/ml_router.py",
		}},
		{Flag: UseClassification, Paths: []string{
			pkg + "/models/ml/classification",
			pkg + "/models/ml/classification.py",
			pkg + "/services/classification_service.py",
		}},
		{Flag: UseForecasting, Paths: []string{
			pkg + "/models/ml/forecasting",
			pkg + "/models/ml/forecasting.py",
			pkg + "/services/forecasting_service.py",
		}},
		{Flag: UseRegression, Paths: []string{
			pkg + "/models/ml/regression",
			pkg + "/models/ml/regression.py",
		}},
		{Flag: UseSentiment, Paths: []string{pkg + "/services/sentiment_service.py"}},
		{Flag: UseFeatureStore, Paths: []string{pkg + "/infrastructure/storage/feature_store.py"}},
		{Flag: UseVectorDB, Paths: []string{pkg + "/infrastructure/storage/vector_db.py"}},
		{Flag: UseMessaging, Paths: []string{pkg + "/infrastructure/messaging"}},
		{Flag: UseMLflow, Paths: []string{pkg + "/infrastructure/tracking"}},
		{Flag: LightweightMode, Paths: []string{
			pkg + "/core.py",
			pkg + "/pipelines.py",
			pkg + "/models/ml/classification.py",
			pkg + "/models/ml/forecasting.py",
			pkg + "/models/ml/regression.py",
		}},
	}
}
