package ai

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Global map to track initialized prompt directories (to avoid duplicate logs)
var (
	initializedDirs   = make(map[string]bool)
	initializedDirsMu sync.RWMutex
)

// PromptManager resolves prompt templates in two tiers: an external
// prompts directory when configured, falling back to the compiled-in
// defaults on any failure (including "not configured"). Both tiers are
// pure string templates with {VAR} substitution and no embedded control
// flow.
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager
func NewPromptManager(promptsDir string) *PromptManager {
	if promptsDir != "" {
		initializedDirsMu.Lock()
		if !initializedDirs[promptsDir] {
			initializedDirs[promptsDir] = true
			log.Printf("[PromptManager] Initialized for directory: %s", promptsDir)
		}
		initializedDirsMu.Unlock()
	}
	return &PromptManager{PromptsDir: promptsDir}
}

// LoadPrompt loads a prompt template by name, preferring the external
// directory and falling back to the baked-in default.
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		path := filepath.Join(pm.PromptsDir, name+".txt")
		content, err := os.ReadFile(path)
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			log.Printf("[PromptManager] External prompt %s unreadable, using default: %v", name, err)
		}
	}

	if content, ok := defaultPrompts[name]; ok {
		return content, nil
	}
	return "", fmt.Errorf("prompt template not found: %s", name)
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		placeholderKey := "{" + placeholder + "}"
		result = strings.ReplaceAll(result, placeholderKey, value)
	}

	return result, nil
}
