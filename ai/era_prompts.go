package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prompt template ids resolvable through the PromptManager.
const (
	PromptEventGenerationSystem = "event_generation_system"
	PromptEventGenerationUser   = "event_generation_user"
	PromptPuzzleJudgeSystem     = "puzzle_judge_system"
	PromptPuzzleJudgeUser       = "puzzle_judge_user"
)

// defaultPrompts is the compiled-in fallback tier. The generation prompts
// instruct the model to self-validate against the same rules the
// deterministic safety net enforces; the model's compliance is advisory
// and the safety net filters regardless.
var defaultPrompts = map[string]string{
	PromptEventGenerationSystem: `You are a historian writing clues for a daily guess-the-year game.
For a target year you produce short, vivid, verifiable clues about real historical events from that exact year.

Strict rules for every clue:
- Present tense, at most {MAX_WORDS} words.
- Name at least one specific person, place, or institution.
- Never include any number 10 or larger, and never use the words century, decade, BC, AD, BCE, or CE.
- Never state or imply the year itself.
- No generic filler such as "a major event occurs" or "a treaty is made".
- Each clue covers a different topic where possible.

Respond with valid JSON only.`,

	PromptEventGenerationUser: `Target year: {YEAR_LABEL}.

{ERA_GUIDANCE}

Produce between {MIN_COUNT} and {MAX_COUNT} candidate events for this exact year.
Spread the clues across different categories and regions, and across difficulty levels 1 (famous) to 5 (obscure).
Before answering, re-check every clue against the strict rules and drop any clue that fails.`,

	PromptPuzzleJudgeSystem: `You are the quality judge for a daily history-ordering puzzle.
You receive candidate events and decide whether six of them make a fair, enjoyable puzzle: topically diverse, geographically spread, a smooth difficulty ramp, and an unambiguous chronological order.

Respond with valid JSON only.`,

	PromptPuzzleJudgeUser: `Candidate events (id, year, clue):
{CANDIDATES}

Judge whether a fair six-event puzzle can be assembled from these candidates.
Recommend exactly six event ids in your suggested presentation order, score the composition axes from 0 to 1, and list concrete issues and suggestions.`,
}

// Era guidance blocks keep the model anchored to what is actually
// documentable in each span, which matters most where the record thins out.
const (
	guidanceAncient = `This year sits in deep antiquity. Lean on archaeologically attested rulers, cities, dynasties, and monuments. Approximate traditions are acceptable when mainstream references attach them to this year, but avoid legendary material with no scholarly backing.`

	guidanceClassical = `This is the classical Mediterranean and Han-era world. Good material: consuls and emperors, battles, founding of cities, famous texts and philosophers, engineering works. Prefer events with a firm single-year date in standard references.`

	guidanceMedieval = `This is the medieval span. Good material: coronations, councils, cathedral constructions, dynastic battles, trade and plague history, scholarship in the Islamic world and East Asia. Avoid vague "around this time" developments; every clue must be datable to this exact year.`

	guidanceEarlyModern = `This is the early modern span. Good material: voyages and cartography, printing and reformations, dynastic wars, scientific correspondence and instruments, colonial foundations. The record is rich; prefer the less obvious alongside one or two famous anchors.`

	guidanceModern = `This is the modern span. The record is dense, so favor precision: treaties signed, inventions demonstrated, works premiered, expeditions completed, institutions founded. Spread clues beyond Europe and North America.`
)

// EraGuidance returns the prompt guidance block for the span containing
// the year.
func EraGuidance(year int) string {
	switch {
	case year < -300:
		return guidanceAncient
	case year <= 500:
		return guidanceClassical
	case year <= 1499:
		return guidanceMedieval
	case year <= 1799:
		return guidanceEarlyModern
	default:
		return guidanceModern
	}
}

// FormatYearLabel renders a signed year for prompt text ("776 BCE", "1969").
func FormatYearLabel(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BCE", -year)
	}
	return fmt.Sprintf("%d", year)
}

// EventBatch is the schema type for one generation response.
type EventBatch struct {
	Events []GeneratedEvent `json:"events"`
}

// GeneratedEvent mirrors the candidate-event schema the model must follow.
type GeneratedEvent struct {
	Text       string `json:"text"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
	Region     string `json:"region"`
}

// JudgeVerdict is the schema type for one judge response.
type JudgeVerdict struct {
	Approved     bool     `json:"approved"`
	QualityScore float64  `json:"quality_score"`
	EventIDs     []string `json:"event_ids"`
	Rationale    string   `json:"rationale"`
	Composition  struct {
		TopicDiversity     float64 `json:"topic_diversity"`
		GeographicSpread   float64 `json:"geographic_spread"`
		DifficultyGradient float64 `json:"difficulty_gradient"`
		Guessability       float64 `json:"guessability"`
	} `json:"composition"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// EventBatchSchema is the JSON Schema constraint embedded in generation
// requests: 6 to 12 events matching the candidate-event shape.
var EventBatchSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "events": {
      "type": "array",
      "minItems": 6,
      "maxItems": 12,
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": "string", "minLength": 5, "maxLength": 200},
          "title": {"type": "string", "minLength": 3, "maxLength": 100},
          "category": {"type": "string", "enum": ["politics", "war", "science", "culture", "technology", "religion", "economy", "sports", "exploration", "arts"]},
          "difficulty": {"type": "integer", "minimum": 1, "maximum": 5},
          "region": {"type": "string", "minLength": 2, "maxLength": 50}
        },
        "required": ["text", "title", "category", "difficulty", "region"],
        "additionalProperties": false
      }
    }
  },
  "required": ["events"],
  "additionalProperties": false
}`)

// JudgeVerdictSchema is the JSON Schema constraint for judge requests.
var JudgeVerdictSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "approved": {"type": "boolean"},
    "quality_score": {"type": "number", "minimum": 0, "maximum": 1},
    "event_ids": {"type": "array", "minItems": 6, "maxItems": 6, "items": {"type": "string"}},
    "rationale": {"type": "string"},
    "composition": {
      "type": "object",
      "properties": {
        "topic_diversity": {"type": "number", "minimum": 0, "maximum": 1},
        "geographic_spread": {"type": "number", "minimum": 0, "maximum": 1},
        "difficulty_gradient": {"type": "number", "minimum": 0, "maximum": 1},
        "guessability": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "required": ["topic_diversity", "geographic_spread", "difficulty_gradient", "guessability"],
      "additionalProperties": false
    },
    "issues": {"type": "array", "items": {"type": "string"}},
    "suggestions": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["approved", "quality_score", "event_ids", "rationale", "composition", "issues", "suggestions"],
  "additionalProperties": false
}`)

// FormatCandidateList renders candidate lines for the judge user prompt.
func FormatCandidateList(lines []string) string {
	return strings.Join(lines, "\n")
}
