// Package gateway presents one uniform "generate text from prompt plus
// optional attachments" operation over two backends: a cloud generative-AI
// API and a locally hosted Ollama-compatible inference server. It owns
// backend selection, prompt assembly, and the local-model fallback.
package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate-ai/wingmate/src/logging"
	"github.com/wingmate-ai/wingmate/src/models"
	"github.com/wingmate-ai/wingmate/src/prompt"
)

// Mode is the active provider mode.
type Mode int

const (
	ModeCloud Mode = iota
	ModeLocal
)

func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "cloud"
}

// CacheConfig enables the answer cache around the active engine.
type CacheConfig struct {
	Size int
	TTL  time.Duration
	Path string
}

// Config carries everything the gateway needs at construction. Only the
// switch operations change backend selection afterwards.
type Config struct {
	UseLocal bool

	// Cloud backend. Engine is one of "gemini" (default), "openai",
	// "anthropic"; APIKey must be non-empty for cloud mode.
	CloudEngine string
	APIKey      string
	CloudModel  string

	// Local backend.
	LocalEndpoint string
	LocalModel    string
	LocalOptions  models.OllamaOptions

	Persona string
	Cache   *CacheConfig
	Logger  logging.Logger
}

// Result is a completed generation: the answer text and the call time.
type Result struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// Status is the outcome of TestConnection. It is a value, never a panic or
// an error return: reachability problems are folded into Error.
type Status struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Gateway routes generation requests to the active backend. The mode field
// is the only shared mutable state; it changes only inside the switch
// operations. Each generation call captures the active engine once at entry,
// so in-flight calls complete against the provider that was active when they
// were issued. Ordering of a switch racing an in-flight call is undefined.
type Gateway struct {
	mu       sync.Mutex
	mode     Mode
	cfg      Config
	cloud    models.Engine        // wrapped, nil until cloud mode entered
	cloudRaw models.Engine        // same engine without the cache wrapper
	local    *models.OllamaEngine // concrete, for model/list access
	localGen models.Engine        // wrapped view of local

	// localTried is set after the first generation attempt since entering
	// local mode; the one-shot model substitution only happens before that.
	localTried bool

	prompts *prompt.Builder
	log     logging.Logger
}

// New constructs the gateway in cloud or local mode per cfg. Cloud mode
// requires a credential; local mode requires only an endpoint (the model may
// be auto-selected from the server's installed list).
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	g := &Gateway{
		cfg:     cfg,
		prompts: prompt.NewBuilder(cfg.Persona),
		log:     cfg.Logger,
	}
	if g.log == nil {
		g.log = logging.NoOpLogger{}
	}

	if cfg.UseLocal {
		if _, err := g.SwitchToLocal(ctx, cfg.LocalModel, cfg.LocalEndpoint); err != nil {
			return nil, err
		}
		return g, nil
	}

	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, configErr(cloudEngineName(cfg.CloudEngine), "cloud mode needs an API key (or set local mode)")
	}
	if err := g.SwitchToCloud(ctx, cfg.APIKey); err != nil {
		return nil, err
	}
	return g, nil
}

// Mode reports the active provider mode.
func (g *Gateway) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// ActiveModel reports the model the active backend would use. Empty means
// local mode with no model selected.
func (g *Gateway) ActiveModel() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeLocal {
		if g.local == nil {
			return ""
		}
		return g.local.Model
	}
	return g.cfg.CloudModel
}

// Backend reports the active backend name for display.
func (g *Gateway) Backend() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeLocal {
		return "ollama"
	}
	return cloudEngineName(g.cfg.CloudEngine)
}

// GenerateFromText answers a plain text question. details is the opaque
// problem-description payload; it is serialized deterministically into the
// prompt.
func (g *Gateway) GenerateFromText(ctx context.Context, question string, details map[string]any) (Result, error) {
	p := g.prompts.Question(question, details)
	return g.generate(ctx, p, nil, models.Capability{})
}

// GenerateFromImages answers from a set of screenshots. Valid only when the
// active backend accepts image input.
func (g *Gateway) GenerateFromImages(ctx context.Context, task string, images []models.File, details map[string]any) (Result, error) {
	p := g.prompts.Screenshots(task, details)
	return g.generate(ctx, p, images, models.Capability{Images: true})
}

// GenerateFromAudio answers the question spoken in a single audio clip. task
// optionally refines what to do with the clip; empty means "answer the
// question it contains". Valid only when the active backend accepts audio
// input.
func (g *Gateway) GenerateFromAudio(ctx context.Context, task string, audio models.File, details map[string]any) (Result, error) {
	p := g.prompts.Audio(task, details)
	return g.generate(ctx, p, []models.File{audio}, models.Capability{Audio: true})
}

func (g *Gateway) generate(ctx context.Context, p string, files []models.File, needs models.Capability) (Result, error) {
	g.mu.Lock()
	mode := g.mode
	engine := g.activeEngineLocked()
	g.mu.Unlock()

	reqID := uuid.NewString()

	if engine == nil {
		return Result{}, configErr(g.Backend(), "no backend configured")
	}
	if mode == ModeLocal && g.localModel() == "" {
		return Result{}, configErr("ollama", "no local model selected")
	}

	caps := engine.Capabilities()
	if needs.Images && !caps.Images {
		return Result{}, &BackendError{Backend: engine.Name(), Kind: KindUnsupported,
			Err: errUnsupported("image input")}
	}
	if needs.Audio && !caps.Audio {
		return Result{}, &BackendError{Backend: engine.Name(), Kind: KindUnsupported,
			Err: errUnsupported("audio input")}
	}

	start := time.Now()
	g.log.Debug("generation started", "request_id", reqID, "backend", engine.Name(), "mode", mode.String())

	text, err := callEngine(ctx, engine, p, files)

	if err != nil && mode == ModeLocal {
		if retried, rtext, rerr := g.retryWithSubstitute(ctx, p, files, err, reqID); retried {
			text, err = rtext, rerr
		}
	}
	if mode == ModeLocal {
		g.markLocalTried()
	}

	if err != nil {
		g.log.Error("generation failed", "request_id", reqID, "backend", engine.Name(),
			"duration", time.Since(start), "error", err)
		return Result{}, wrapBackendErr(engine.Name(), err)
	}

	g.log.Info("generation completed", "request_id", reqID, "backend", engine.Name(),
		"duration", time.Since(start), "chars", len(text))
	return Result{Text: text, Timestamp: time.Now().UnixMilli()}, nil
}

func callEngine(ctx context.Context, engine models.Engine, p string, files []models.File) (string, error) {
	if len(files) == 0 {
		return engine.Generate(ctx, p)
	}
	return engine.GenerateWithFiles(ctx, p, files)
}

// retryWithSubstitute implements the single local-model fallback: if the
// first real call in local mode errors, fetch a fresh model list, adopt its
// first entry when it differs from the current model, and retry once. Any
// further failure surfaces untouched.
func (g *Gateway) retryWithSubstitute(ctx context.Context, p string, files []models.File, cause error, reqID string) (bool, string, error) {
	g.mu.Lock()
	tried := g.localTried
	local := g.local
	g.mu.Unlock()
	if tried || local == nil {
		return false, "", nil
	}

	fresh := g.ListLocalModels(ctx)
	if len(fresh) == 0 || fresh[0] == local.Model {
		return false, "", nil
	}

	substitute, err := models.NewOllamaEngine(local.Endpoint(), fresh[0], local.Options)
	if err != nil {
		return false, "", nil
	}
	g.log.Warn("substituting local model after failed call", "request_id", reqID,
		"from", local.Model, "to", fresh[0], "cause", cause)

	g.mu.Lock()
	g.local = substitute
	g.localGen = g.wrap(substitute)
	engine := g.localGen
	g.mu.Unlock()

	text, rerr := callEngine(ctx, engine, p, files)
	return true, text, rerr
}

// SwitchToLocal activates the local backend. With an empty modelName the
// gateway adopts the first entry of the server's installed-model list; an
// empty list leaves it in a "no model" state (selected == "", no error).
// The selected model is returned so substitution stays observable.
func (g *Gateway) SwitchToLocal(ctx context.Context, modelName, endpoint string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = g.localEndpoint()
	}

	engine, err := models.NewOllamaEngine(endpoint, modelName, g.localOptions())
	if err != nil {
		return "", configErr("ollama", err.Error())
	}

	selected := g.selectLocalModel(ctx, engine, modelName)
	if selected != engine.Model {
		engine, err = models.NewOllamaEngine(endpoint, selected, g.localOptions())
		if err != nil {
			return "", configErr("ollama", err.Error())
		}
	}

	g.mu.Lock()
	g.mode = ModeLocal
	g.local = engine
	g.localGen = g.wrap(engine)
	g.localTried = false
	g.cfg.LocalEndpoint = endpoint
	g.cfg.LocalModel = selected
	g.mu.Unlock()

	g.log.Info("switched to local backend", "endpoint", endpoint, "model", selected)
	return selected, nil
}

// selectLocalModel applies the auto-selection rule: keep the requested model
// if the server lists it (or the list cannot be fetched), otherwise take the
// first listed model.
func (g *Gateway) selectLocalModel(ctx context.Context, engine *models.OllamaEngine, requested string) string {
	installed, err := engine.ListModels(ctx)
	if err != nil || len(installed) == 0 {
		return requested
	}
	if requested != "" {
		for _, name := range installed {
			if name == requested {
				return requested
			}
		}
	}
	if requested != "" {
		g.log.Warn("configured local model not installed, using first listed",
			"requested", requested, "selected", installed[0])
	}
	return installed[0]
}

// SwitchToCloud activates the cloud backend, with a new credential or the
// one supplied at construction.
func (g *Gateway) SwitchToCloud(ctx context.Context, apiKey string) error {
	g.mu.Lock()
	if strings.TrimSpace(apiKey) == "" {
		apiKey = g.cfg.APIKey
	}
	name := cloudEngineName(g.cfg.CloudEngine)
	rebuild := g.cloud == nil || apiKey != g.cfg.APIKey
	g.mu.Unlock()

	if strings.TrimSpace(apiKey) == "" {
		return configErr(name, "cloud mode needs an API key")
	}

	if rebuild {
		engine, err := g.buildCloudEngine(ctx, apiKey)
		if err != nil {
			return configErr(name, err.Error())
		}
		g.mu.Lock()
		g.cloud = g.wrap(engine)
		g.cloudRaw = engine
		g.mu.Unlock()
	}

	g.mu.Lock()
	g.mode = ModeCloud
	g.cfg.APIKey = apiKey
	g.mu.Unlock()

	g.log.Info("switched to cloud backend", "engine", name, "model", g.cfg.CloudModel)
	return nil
}

func (g *Gateway) buildCloudEngine(ctx context.Context, apiKey string) (models.Engine, error) {
	model := g.cfg.CloudModel
	switch cloudEngineName(g.cfg.CloudEngine) {
	case "openai":
		return models.NewOpenAIEngine(apiKey, model)
	case "anthropic":
		return models.NewAnthropicEngine(apiKey, model)
	default:
		return models.NewGeminiEngine(ctx, apiKey, model)
	}
}

// TestConnection performs a minimal "Hello" round-trip against the active
// backend. It never returns a Go error; failures land in Status.Error.
// The round-trip bypasses the answer cache: a cached "Hello" would report a
// dead backend as reachable.
func (g *Gateway) TestConnection(ctx context.Context) Status {
	g.mu.Lock()
	mode := g.mode
	local := g.local
	var engine models.Engine
	if mode == ModeLocal {
		if local != nil {
			engine = local
		}
	} else {
		engine = g.cloudRaw
	}
	g.mu.Unlock()

	if engine == nil {
		return Status{OK: false, Error: "no backend configured"}
	}
	if mode == ModeLocal && local != nil && local.Model == "" {
		// No model to generate with; a tags round-trip still reports
		// reachability, and its error names the endpoint.
		if _, err := local.ListModels(ctx); err != nil {
			return Status{OK: false, Error: err.Error()}
		}
		return Status{OK: false, Error: "no model selected on " + local.Endpoint()}
	}

	if _, err := callEngine(ctx, engine, "Hello", nil); err != nil {
		return Status{OK: false, Error: err.Error()}
	}
	return Status{OK: true}
}

// ListLocalModels returns the installed models on the local server. An
// unreachable server yields an empty slice, never an error.
func (g *Gateway) ListLocalModels(ctx context.Context) []string {
	g.mu.Lock()
	local := g.local
	g.mu.Unlock()

	if local == nil {
		transient, err := models.NewOllamaEngine(g.localEndpoint(), "", g.localOptions())
		if err != nil {
			return []string{}
		}
		local = transient
	}

	names, err := local.ListModels(ctx)
	if err != nil || names == nil {
		g.log.Debug("local model listing failed", "error", err)
		return []string{}
	}
	return names
}

func (g *Gateway) activeEngineLocked() models.Engine {
	if g.mode == ModeLocal {
		return g.localGen
	}
	return g.cloud
}

func (g *Gateway) localModel() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.local == nil {
		return ""
	}
	return g.local.Model
}

func (g *Gateway) markLocalTried() {
	g.mu.Lock()
	g.localTried = true
	g.mu.Unlock()
}

func (g *Gateway) localEndpoint() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if strings.TrimSpace(g.cfg.LocalEndpoint) != "" {
		return g.cfg.LocalEndpoint
	}
	return models.DefaultOllamaHost
}

func (g *Gateway) localOptions() models.OllamaOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg.LocalOptions == (models.OllamaOptions{}) {
		return models.DefaultOllamaOptions()
	}
	return g.cfg.LocalOptions
}

// wrap applies the answer cache when configured.
func (g *Gateway) wrap(e models.Engine) models.Engine {
	if g.cfg.Cache == nil || e == nil {
		return e
	}
	return models.NewCachedEngine(e, g.cfg.Cache.Size, g.cfg.Cache.TTL, g.cfg.Cache.Path)
}

func cloudEngineName(engine string) string {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "openai":
		return "openai"
	case "anthropic", "claude":
		return "anthropic"
	default:
		return "gemini"
	}
}
