package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shiftbuddy/hostel-swap/internal/service"
)

// looseString accepts a JSON string or number.  Seater arrives as either
// depending on the client.  It also implements echo.BindUnmarshaler for
// form posts.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = looseString(n.String())
	return nil
}

func (s *looseString) UnmarshalParam(param string) error {
	*s = looseString(param)
	return nil
}

type createRequestBody struct {
	CurrentHostel string      `json:"currentHostel" form:"currentHostel"`
	CurrentBlock  string      `json:"currentBlock" form:"currentBlock"`
	CurrentFloor  string      `json:"currentFloor" form:"currentFloor"`
	CurrentRoom   string      `json:"currentRoom" form:"currentRoom"`
	DesiredHostel string      `json:"desiredHostel" form:"desiredHostel"`
	DesiredBlock  string      `json:"desiredBlock" form:"desiredBlock"`
	DesiredFloor  string      `json:"desiredFloor" form:"desiredFloor"`
	DesiredRoom   string      `json:"desiredRoom" form:"desiredRoom"`
	RoomType      string      `json:"roomType" form:"roomType"`
	Seater        looseString `json:"seater" form:"seater"`
	Message       string      `json:"message" form:"message"`
}

func (b createRequestBody) input() service.RequestInput {
	return service.RequestInput{
		CurrentHostel: b.CurrentHostel,
		CurrentBlock:  b.CurrentBlock,
		CurrentFloor:  b.CurrentFloor,
		CurrentRoom:   b.CurrentRoom,
		DesiredHostel: b.DesiredHostel,
		DesiredBlock:  b.DesiredBlock,
		DesiredFloor:  b.DesiredFloor,
		DesiredRoom:   b.DesiredRoom,
		RoomType:      b.RoomType,
		Seater:        strings.TrimSpace(string(b.Seater)),
		Message:       b.Message,
	}
}

// patchRequestBody is JSON only; a field left out of the body stays nil.
type patchRequestBody struct {
	CurrentHostel *string      `json:"currentHostel"`
	CurrentBlock  *string      `json:"currentBlock"`
	CurrentFloor  *string      `json:"currentFloor"`
	CurrentRoom   *string      `json:"currentRoom"`
	DesiredHostel *string      `json:"desiredHostel"`
	DesiredBlock  *string      `json:"desiredBlock"`
	DesiredFloor  *string      `json:"desiredFloor"`
	DesiredRoom   *string      `json:"desiredRoom"`
	RoomType      *string      `json:"roomType"`
	Seater        *looseString `json:"seater"`
	Message       *string      `json:"message"`
}

func (b patchRequestBody) patch() service.RequestPatch {
	p := service.RequestPatch{
		CurrentHostel: b.CurrentHostel,
		CurrentBlock:  b.CurrentBlock,
		CurrentFloor:  b.CurrentFloor,
		CurrentRoom:   b.CurrentRoom,
		DesiredHostel: b.DesiredHostel,
		DesiredBlock:  b.DesiredBlock,
		DesiredFloor:  b.DesiredFloor,
		DesiredRoom:   b.DesiredRoom,
		RoomType:      b.RoomType,
		Message:       b.Message,
	}
	if b.Seater != nil {
		v := strings.TrimSpace(string(*b.Seater))
		p.Seater = &v
	}
	return p
}

// RequestHandler serves the swap request routes.
type RequestHandler struct {
	Requests *service.RequestService
}

func NewRequestHandler(s *service.RequestService) *RequestHandler {
	return &RequestHandler{Requests: s}
}

// List returns the public feed of open requests.
func (h *RequestHandler) List(c echo.Context) error {
	items, err := h.Requests.ListOpen(c.Request().Context())
	if err != nil {
		return failRequest(c, err, "Failed to fetch requests")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": items})
}

// Mine returns the caller's own requests.
func (h *RequestHandler) Mine(c echo.Context) error {
	items, err := h.Requests.ListMine(c.Request().Context(), session(c))
	if err != nil {
		return failRequest(c, err, "Failed to fetch requests")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "items": items})
}

// Create accepts JSON or form encoded bodies.
func (h *RequestHandler) Create(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "Invalid request body"})
	}
	item, err := h.Requests.Create(c.Request().Context(), session(c), body.input())
	if err != nil {
		return failRequest(c, err, "Failed to create request")
	}
	return c.JSON(http.StatusCreated, echo.Map{"ok": true, "item": item})
}

func (h *RequestHandler) Update(c echo.Context) error {
	var body patchRequestBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "Invalid request body"})
	}
	item, err := h.Requests.Update(c.Request().Context(), session(c), c.Param("id"), body.patch())
	if err != nil {
		return failRequest(c, err, "Failed to update request")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "item": item})
}

func (h *RequestHandler) Delete(c echo.Context) error {
	if err := h.Requests.Delete(c.Request().Context(), session(c), c.Param("id")); err != nil {
		return failRequest(c, err, "Failed to delete request")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Request deleted successfully"})
}
