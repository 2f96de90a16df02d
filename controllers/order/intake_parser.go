package order

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"waste-logistics/logger"
	intakeModel "waste-logistics/models/intake"
	intakeService "waste-logistics/services/intake"
	"waste-logistics/types"
	orderTypes "waste-logistics/types/order"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/genai"
)

// ParseIntakeNote extracts structured order fields from a free-text pickup
// note using the Gemini API. The raw note and outcome are kept for audit.
func (oc *OrderController) ParseIntakeNote(c *fiber.Ctx) error {
	startTime := time.Now()

	service := intakeService.NewIntakeService(oc.DB)
	requestID := service.GenerateRequestID()

	var req orderTypes.IntakeParseNoteRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error(fmt.Sprintf("Invalid intake request body for request %s", requestID), err)

		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: "Invalid request body",
			Status:  fiber.StatusBadRequest,
			Data:    map[string]interface{}{"request_id": requestID},
		})
	}

	if err := req.Validate(); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Message: err.Error(),
			Status:  fiber.StatusBadRequest,
			Data:    map[string]interface{}{"request_id": requestID},
		})
	}

	if err := utils.CheckSiteAccess(c, req.SiteID); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Message: "Caller is not allowed to act on this site",
			Status:  fiber.StatusForbidden,
			Data:    map[string]interface{}{"request_id": requestID},
		})
	}

	_, err := service.CreateInitialRequest(requestID, req.SiteID, req.Note, c.IP(), utils.ActorFromClaims(c))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create initial intake request %s", requestID), err)

		return oc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Message: "Failed to initialize request",
			Status:  fiber.StatusInternalServerError,
			Data:    map[string]interface{}{"request_id": requestID},
		})
	}

	result, err := oc.parseNoteWithGemini(req.Note)
	if err != nil {
		service.SaveError(requestID, fmt.Sprintf("Gemini parsing failed: %s", err.Error()))

		logger.Error(fmt.Sprintf("Failed to parse intake note with Gemini for request %s", requestID), err)

		return oc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Message: "Failed to parse intake note",
			Status:  fiber.StatusInternalServerError,
			Data: map[string]interface{}{
				"error":      err.Error(),
				"request_id": requestID,
			},
		})
	}

	processingTime := time.Since(startTime).Milliseconds()
	service.SaveSuccessResult(requestID, result, processingTime)

	logger.Success(fmt.Sprintf("Intake note parsed successfully in %dms, Request ID: %s", processingTime, requestID))

	return oc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Intake note parsed successfully",
		Data: map[string]interface{}{
			"request_id": requestID,
			"result":     result,
		},
	})
}

// parseNoteWithGemini asks the Gemini API for structured fields from a
// free-text pickup note.
func (oc *OrderController) parseNoteWithGemini(note string) (*intakeModel.IntakeParseResponse, error) {
	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("API_KEY not found in environment variables")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	prompt := `Analyze this waste pickup note and extract the following information. Return ONLY valid JSON.

			If a field is missing or unclear, use an empty string (or null for the weight).

			Required JSON format:
			{
			"waste_type": string,             // e.g. "mixed", "organic", "paper", "metal", "hazardous"
			"estimated_weight_kg": number,    // estimated weight in kilograms, null if not mentioned
			"urgency_hint": string            // one of "normal", "urgent", "critical" if the note implies urgency
			}

			Note to analyze:
			` + note

	content := &genai.Content{
		Parts: []*genai.Part{
			&genai.Part{Text: prompt},
		},
	}

	result, err := client.Models.GenerateContent(
		ctx,
		"gemini-2.5-flash-lite",
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}

	responseText := result.Candidates[0].Content.Parts[0].Text
	if responseText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	jsonText := extractJSONFromMarkdown(responseText)

	var parsedData intakeModel.IntakeParseResponse
	if err := json.Unmarshal([]byte(jsonText), &parsedData); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, response: %s", err, jsonText)
	}

	return &parsedData, nil
}

// extractJSONFromMarkdown extracts JSON content from markdown code blocks
func extractJSONFromMarkdown(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
		return text
	}

	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) > 1 {
			jsonLines := lines[1 : len(lines)-1]
			return strings.Join(jsonLines, "\n")
		}
	}

	return text
}
