package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bme-workers/internal/common/metrics"

	"google.golang.org/genai"
)

// ContentGenerator is the slice of *genai.Models used here.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiLookup asks a Gemini model for per-100 g/ml nutrition as
// schema-constrained JSON.
type GeminiLookup struct {
	models ContentGenerator
	model  string
}

func NewGeminiLookup(models ContentGenerator, model string) *GeminiLookup {
	return &GeminiLookup{models: models, model: model}
}

const lookupInstruction = `You are a nutrition database. For the food or drink named by the user, return typical values per 100 g, or per 100 ml for liquids. Use the common generic product when a brand is named. Set "known" to false if the text is not a food or drink.`

var lookupSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"known":    {Type: genai.TypeBoolean},
		"name":     {Type: genai.TypeString, Description: "Canonical English food name"},
		"calories": {Type: genai.TypeNumber},
		"protein":  {Type: genai.TypeNumber},
		"carbs":    {Type: genai.TypeNumber},
		"fat":      {Type: genai.TypeNumber},
		"isLiquid": {Type: genai.TypeBoolean},
	},
	Required: []string{"known", "name", "calories", "protein", "carbs", "fat", "isLiquid"},
}

type lookupReply struct {
	Known    bool    `json:"known"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	IsLiquid bool    `json:"isLiquid"`
}

func (g *GeminiLookup) Lookup(ctx context.Context, name string) (*Record, error) {
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(name, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(lookupInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    lookupSchema,
		},
	)
	metrics.LLMRequestDuration.WithLabelValues("nutrition").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gemini nutrition lookup: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, nil
	}

	var reply lookupReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("decode nutrition reply: %w", err)
	}
	if !reply.Known || reply.Calories < 0 || reply.Protein < 0 || reply.Carbs < 0 || reply.Fat < 0 {
		return nil, nil
	}
	if reply.Name == "" {
		reply.Name = name
	}

	return &Record{
		Name:              reply.Name,
		Calories:          reply.Calories,
		Protein:           reply.Protein,
		Carbs:             reply.Carbs,
		Fat:               reply.Fat,
		IsLiquid:          reply.IsLiquid,
		ReferenceQuantity: ReferenceQuantity,
	}, nil
}
