// wingmate — one-shot CLI driver for the provider gateway.
// Answers an interview question from text, screenshots, or an audio clip,
// using the cloud backend by default or a local Ollama server with -local.
//
// Examples:
//
//	export GEMINI_API_KEY=...
//	wingmate -message "What is a REST API?"
//
//	wingmate -message "Solve this" screenshot1.png screenshot2.png
//
//	wingmate -local -model llama3.2 -message "Tell me about goroutines"
//
//	wingmate -local -test        # check the local server is reachable
//	wingmate -local -models      # list installed local models
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wingmate-ai/wingmate/src/config"
	"github.com/wingmate-ai/wingmate/src/gateway"
	"github.com/wingmate-ai/wingmate/src/logging"
	"github.com/wingmate-ai/wingmate/src/models"
)

var (
	flagConfig   = flag.String("config", "wingmate.toml", "Path to the TOML config file")
	flagMessage  = flag.String("message", "", "Question text (ignored if -stdin is set)")
	flagStdin    = flag.Bool("stdin", false, "Read the question from STDIN")
	flagDetails  = flag.String("details", "", "Problem context as comma-separated key=value pairs")
	flagLocal    = flag.Bool("local", false, "Use the local inference server")
	flagModel    = flag.String("model", "", "Override the model for the selected backend")
	flagEndpoint = flag.String("endpoint", "", "Override the local server endpoint")
	flagTest     = flag.Bool("test", false, "Test the connection to the active backend and exit")
	flagModels   = flag.Bool("models", false, "List models installed on the local server and exit")
	flagJSON     = flag.Bool("json", false, "Print the JSON result {text, timestamp}")
	flagTimeout  = flag.Duration("timeout", 90*time.Second, "Overall request timeout")
	flagVerbose  = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	level := slog.LevelWarn
	if *flagVerbose {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level, "text")

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fail(err)
	}
	applyFlags(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	gw, err := gateway.New(ctx, cfg.Gateway(logger))
	if err != nil {
		fail(err)
	}

	if *flagModels {
		for _, name := range gw.ListLocalModels(ctx) {
			fmt.Println(name)
		}
		return
	}

	if *flagTest {
		status := gw.TestConnection(ctx)
		if *flagJSON {
			printJSON(status)
		} else if status.OK {
			fmt.Printf("%s: ok\n", gw.Backend())
		} else {
			fmt.Printf("%s: %s\n", gw.Backend(), status.Error)
		}
		if !status.OK {
			os.Exit(1)
		}
		return
	}

	msg, err := getMessage(*flagMessage, *flagStdin, os.Stdin)
	if err != nil {
		fail(err)
	}
	images, audio, err := loadAttachments(flag.Args())
	if err != nil {
		fail(err)
	}
	if strings.TrimSpace(msg) == "" && len(images) == 0 && audio == nil {
		fail(errors.New("no question and no attachments provided"))
	}

	details := parseDetails(*flagDetails)

	var result gateway.Result
	switch {
	case audio != nil:
		result, err = gw.GenerateFromAudio(ctx, msg, *audio, details)
	case len(images) > 0:
		result, err = gw.GenerateFromImages(ctx, msg, images, details)
	default:
		result, err = gw.GenerateFromText(ctx, msg, details)
	}
	if err != nil {
		fail(err)
	}

	if *flagJSON {
		printJSON(result)
		return
	}
	fmt.Println(strings.TrimSpace(result.Text))
}

func applyFlags(cfg *config.Config) {
	if *flagLocal {
		cfg.Assistant.UseLocal = true
	}
	if *flagModel != "" {
		if cfg.Assistant.UseLocal {
			cfg.Local.Model = *flagModel
		} else {
			cfg.Cloud.Model = *flagModel
		}
	}
	if *flagEndpoint != "" {
		cfg.Local.Endpoint = *flagEndpoint
	}
}

func getMessage(message string, useStdin bool, in io.Reader) (string, error) {
	if !useStdin {
		return message, nil
	}
	var sb strings.Builder
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return sb.String(), nil
}

// loadAttachments reads the trailing file arguments. Audio wins over images;
// a single call carries one modality class only, and only one audio clip.
func loadAttachments(paths []string) ([]models.File, *models.File, error) {
	var images []models.File
	var audio *models.File

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read attachment %s: %w", path, err)
		}
		f := models.File{Name: filepath.Base(path), Data: data}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".wav", ".mp3", ".m4a", ".aac", ".ogg", ".flac":
			if audio != nil {
				return nil, nil, errors.New("at most one audio attachment per call")
			}
			audio = &f
		default:
			images = append(images, f)
		}
	}

	if audio != nil && len(images) > 0 {
		return nil, nil, errors.New("mixing audio and image attachments is not supported")
	}
	return images, audio, nil
}

// parseDetails turns "company=Acme,role=Backend" into the problem-description
// payload embedded into the prompt.
func parseDetails(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	details := make(map[string]any)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		details[key] = strings.TrimSpace(parts[1])
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "wingmate:", err)
	os.Exit(1)
}
