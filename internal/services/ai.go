package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskmanager-api/internal/models"
)

// SubtaskGenerator proposes subtasks for a parent task.
type SubtaskGenerator interface {
	GenerateSubtasks(ctx context.Context, parent *models.Task) ([]GeneratedTask, error)
}

type AIService struct {
	client *openai.Client
}

type GeneratedTask struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DueDate     *models.Date `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateSubtasks breaks parent down into smaller tasks using OpenAI GPT
func (s *AIService) GenerateSubtasks(ctx context.Context, parent *models.Task) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	today := time.Now().Format(models.DateLayout)
	prompt := fmt.Sprintf(`You are a project planning assistant. Break the following task down into concrete subtasks.

Today: %s

Task: %s
Description: %s
Priority: %s
Due date: %s

Return a JSON array of subtasks in this format:
[
  {
    "name": "short subtask name",
    "description": "what needs to be done",
    "due_date": "YYYY-MM-DD, no later than the task due date, or null"
  }
]

Rules:
- Return an empty array [] if the task cannot be broken down
- due_date must be a YYYY-MM-DD string or null
- Return only JSON, without any explanation`, today, parent.Name, parent.Description, parent.Priority, parent.DueDate)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks decodes the model output, tolerating a fenced code block.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
