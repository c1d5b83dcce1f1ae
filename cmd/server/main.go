package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"safeplate/server/internal/ai"
	"safeplate/server/internal/api"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("load .env file")
	}

	openAICfg := ai.ChatConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
	if temp := os.Getenv("OPENAI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			openAICfg.Temperature = v
		}
	}
	if timeout := os.Getenv("OPENAI_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			openAICfg.Timeout = d
		}
	}

	geminiCfg := ai.GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
	if temp := os.Getenv("GEMINI_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			geminiCfg.Temperature = v
		}
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	ocrTimeout := 30 * time.Second
	if timeout := os.Getenv("OCR_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			ocrTimeout = d
		}
	}

	cfg := api.Config{
		AllowedOrigins: origins,
		UseAI:          envBool("USE_AI", true),
		AIOnly:         envBool("AI_ONLY", false),
		ProviderName:   os.Getenv("AI_PROVIDER"),
		OpenAI:         openAICfg,
		Gemini:         geminiCfg,
		OCREndpoint:    strings.TrimSpace(os.Getenv("OCR_ENDPOINT")),
		OCRTimeout:     ocrTimeout,
		DBPath:         strings.TrimSpace(os.Getenv("SAFEPLATE_DB_PATH")),
		SilentDB:       true,
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}
	defer server.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	logrus.Infof("starting safeplate server on :%s", port)
	if err := server.Router().Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}
