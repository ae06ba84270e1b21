package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskdesk/internal/apierr"
	"taskdesk/internal/models"
	"taskdesk/internal/query"
	"taskdesk/internal/repository"
	"taskdesk/pkg/logger"
)

// TaskRequest is the body for create and update. Limits mirror the schema:
// title up to 30 chars, description up to 50, priority 1 (high) to 3 (low).
type TaskRequest struct {
	Title       string     `json:"title" validate:"required,max=30"`
	Description *string    `json:"description" validate:"omitempty,max=50"`
	IsComplete  bool       `json:"is_complete"`
	Date        *time.Time `json:"date"`
	Priority    int        `json:"priority" validate:"required,oneof=1 2 3"`
}

func (h *Handler) parseTaskRequest(c *fiber.Ctx) (repository.TaskFields, error) {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request body for task", zap.Error(err))
		return repository.TaskFields{}, apierr.BadRequest("Bad request", err)
	}

	if err := h.Validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return repository.TaskFields{}, apierr.MissingField(strings.ToLower(fe.Field()))
				}
			}
		}
		return repository.TaskFields{}, apierr.Validation(err)
	}

	return repository.TaskFields{
		Title:       req.Title,
		Description: req.Description,
		IsComplete:  req.IsComplete,
		Date:        req.Date,
		Priority:    req.Priority,
	}, nil
}

func taskCacheKey(taskID int) string {
	return fmt.Sprintf("task:%d", taskID)
}

func (h *Handler) cacheTask(c *fiber.Ctx, task *models.Task) {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := h.Cache.SetEX(c.Context(), taskCacheKey(task.ID), taskJSON, time.Hour).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
}

func (h *Handler) dropCachedTask(c *fiber.Ctx, taskID int) {
	if err := h.Cache.Del(c.Context(), taskCacheKey(taskID)).Err(); err != nil {
		logger.ErrorLogger.Error("Error invalidating task cache", zap.Error(err))
	}
}

// CreateTask persists a new task for the caller. The completion flag in the
// request is ignored; new tasks always start incomplete.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	fields, err := h.parseTaskRequest(c)
	if err != nil {
		return apierr.Respond(c, err)
	}

	task, err := h.Repo.Create(c.Context(), userID, fields)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return apierr.Respond(c, err)
	}

	h.Hub.Publish(userID, "created", task)
	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("user_id", userID))
	return c.Status(201).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  201,
		"data":    task,
	})
}

// ListTasks answers the caller's tasks, filtered, sorted and paginated per
// the validated query spec.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	spec, err := query.Build(query.Params{
		Title:      c.Query("title"),
		IsComplete: c.Query("is_complete"),
		SortBy:     c.Query("sort_by"),
		Order:      c.Query("order"),
		Skip:       c.Query("skip"),
		Limit:      c.Query("limit"),
	})
	if err != nil {
		logger.AuditLogger.Warn("Rejected list query", zap.Error(err), zap.Int("user_id", userID))
		return apierr.Respond(c, err)
	}

	tasks, err := h.Repo.List(c.Context(), userID, spec)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return apierr.Respond(c, err)
	}

	logger.AuditLogger.Info("Tasks fetched", zap.Int("user_id", userID), zap.Int("count", len(tasks)))
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

// GetTask answers one task by id. A task owned by someone else gets the same
// 404 as a task that does not exist.
func (h *Handler) GetTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("Invalid task ID", err))
	}

	// Cache first. The entry is keyed by task id only, so the owner check
	// still runs; a foreign task answers 404, same as a miss in Postgres.
	if cached, err := h.Cache.Get(c.Context(), taskCacheKey(taskID)).Result(); err == nil {
		var task models.Task
		if err = json.Unmarshal([]byte(cached), &task); err == nil {
			if task.UserID != userID {
				return apierr.Respond(c, apierr.NotFound("Task"))
			}
			logger.AuditLogger.Info("Task found (from cache)", zap.Int("task_id", taskID))
			return c.JSON(fiber.Map{
				"message": "Task found (from cache)",
				"success": true,
				"status":  200,
				"data":    task,
			})
		}
	}

	task, err := h.Repo.GetByID(c.Context(), userID, taskID)
	if err != nil {
		return apierr.Respond(c, err)
	}

	h.cacheTask(c, task)
	logger.AuditLogger.Info("Task found", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

// UpdateTask replaces every mutable field of the task.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("Invalid task ID", err))
	}

	fields, err := h.parseTaskRequest(c)
	if err != nil {
		return apierr.Respond(c, err)
	}

	task, err := h.Repo.Update(c.Context(), userID, taskID, fields)
	if err != nil {
		return apierr.Respond(c, err)
	}

	h.dropCachedTask(c, taskID)
	h.cacheTask(c, task)
	h.Hub.Publish(userID, "updated", task)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return c.Status(200).JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

// DeleteTask removes the task permanently and answers an empty 204.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return apierr.Respond(c, apierr.BadRequest("Invalid task ID", err))
	}

	if err := h.Repo.Delete(c.Context(), userID, taskID); err != nil {
		return apierr.Respond(c, err)
	}

	h.dropCachedTask(c, taskID)
	h.Hub.Publish(userID, "deleted", &models.Task{ID: taskID, UserID: userID})
	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.Int("user_id", userID))
	return c.SendStatus(fiber.StatusNoContent)
}
