package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"github.com/vitalityhub/vitality-helper/internal/chat"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// Static fallbacks: a collaborator failure is never surfaced to the user.
const (
	AdviceFallback = "Keep going! You're doing great. Remember to take deep breaths and stay hydrated."
	ChatFallback   = "I'm here for you. How are you feeling today?"
)

// AIService generates health advice and chat replies. Gemini is the
// primary provider with OpenAI as the configured alternate; both are
// purely presentational and never affect coins, streaks, or alerts.
type AIService struct {
	geminiClient *genai.Client
	openaiClient *openai.Client
	useOpenAI    bool
}

func NewAIService(geminiAPIKey, openaiAPIKey, provider string) (*AIService, error) {
	geminiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &AIService{
		geminiClient: geminiClient,
		openaiClient: openai.NewClient(openaiAPIKey),
		useOpenAI:    strings.EqualFold(provider, "openai"),
	}, nil
}

// AdviceInput is the user snapshot the advisor sees.
type AdviceInput struct {
	Mood        int
	Steps       int
	Medications []string
	Conditions  []string
}

// HealthAdvice returns a short recommendation for the user's current
// state. Any provider failure degrades to the static fallback.
func (s *AIService) HealthAdvice(ctx context.Context, in AdviceInput) string {
	prompt := advicePrompt(in)

	text, err := s.generate(ctx, "", prompt, nil)
	if err != nil {
		logger.Error("advice generation failed", "error", err)
		return AdviceFallback
	}
	return strings.TrimSpace(text)
}

// ChatReply answers one chat message given the conversation so far. Any
// provider failure degrades to the static fallback.
func (s *AIService) ChatReply(ctx context.Context, message string, history []chat.Message, conditions []string) string {
	text, err := s.generate(ctx, chatSystemPrompt(conditions), message, history)
	if err != nil {
		logger.Error("chat generation failed", "error", err)
		return ChatFallback
	}
	return strings.TrimSpace(text)
}

func (s *AIService) generate(ctx context.Context, system, message string, history []chat.Message) (string, error) {
	if s.useOpenAI {
		return s.generateWithOpenAI(ctx, system, message, history)
	}
	return s.generateWithGemini(ctx, system, message, history)
}

func (s *AIService) generateWithGemini(ctx context.Context, system, message string, history []chat.Message) (string, error) {
	model := s.geminiClient.GenerativeModel(geminiModel)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	session := model.StartChat()
	for _, h := range history {
		session.History = append(session.History, &genai.Content{
			Role:  h.Role,
			Parts: []genai.Part{genai.Text(h.Text)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part from Gemini")
	}
	return string(text), nil
}

func (s *AIService) generateWithOpenAI(ctx context.Context, system, message string, history []chat.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, h := range history {
		role := openai.ChatMessageRoleUser
		if h.Role == chat.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: h.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := s.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    openai.GPT3Dot5Turbo,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func advicePrompt(in AdviceInput) string {
	return fmt.Sprintf(`You are a supportive health advisor for the VitalityHub app.
User's current state:
- Mood: %d/5
- Steps today: %d
- Medications: %s
- Medical Conditions: %s

Provide a brief (2-3 sentences), empathetic health advice based on this data.
MANDATORY REQUIREMENT: You MUST prioritize the user's medical conditions in your advice.
- If the user has Heart Disease or BP: You MUST recommend heart-safe, low-impact exercises (like walking) and mention sodium/stress management.
- If the user has Diabetes: You MUST mention blood sugar stability through consistent light activity.
- If the user has Thyroid: You MUST suggest energy-conserving or balancing activities.
- If the user has Anxiety/Depression: You MUST suggest mindfulness, breathing, or gentle movement.

If no specific conditions are present, follow these general rules:
- If mood is low (1-2), suggest a specific relief activity (breathing, journaling).
- If steps are low (<3000), encourage a short walk.`,
		in.Mood, in.Steps, joinOrNone(in.Medications), joinOrNone(in.Conditions))
}

func chatSystemPrompt(conditions []string) string {
	return fmt.Sprintf(`You are VitalityBot, a friendly and empathetic health assistant.
Ask about sleep, stress, and work. Suggest relief activities if the user feels down.
User's Medical History: %s.
CRITICAL: When recommending exercises, you MUST ALWAYS check the user's medical history first.
- If they have Heart Disease/BP: ONLY suggest low-impact activities like slow walking or stretching.
- If they have Diabetes: Emphasize regular, moderate activity.
- If they have Thyroid: Suggest listening to their body's energy levels.
- If they have Anxiety/Depression: Suggest mindfulness-based movements.
NEVER suggest high-intensity workouts if the user has heart conditions or high BP.`,
		joinOrNone(conditions))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
