package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mw "github.com/example/identity-service/internal/adapters/http/middleware"
	"github.com/example/identity-service/internal/service"
	res "github.com/example/identity-service/pkg/http"
)

type MemberHandler struct {
	members   service.MemberService
	lifecycle service.LifecycleService
}

func NewMemberHandler(members service.MemberService, lifecycle service.LifecycleService) *MemberHandler {
	return &MemberHandler{members: members, lifecycle: lifecycle}
}

type changeNicknameRequest struct {
	Nickname string `json:"nickname"`
}

func (h *MemberHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.DELETE("/me", h.DeleteAccount)
	g.PATCH("/nickname", h.ChangeNickname)
	g.PATCH("/image", h.UpdateProfileImage)
	g.GET("/blocks", h.ListBlocked)
	g.POST("/blocks/:id", h.Block)
	g.DELETE("/blocks/:id", h.Unblock)
}

func (h *MemberHandler) Me(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	return res.JSON(c, http.StatusOK, member)
}

func (h *MemberHandler) DeleteAccount(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	if err := h.lifecycle.Delete(c.Request().Context(), member.ID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) ChangeNickname(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	req := new(changeNicknameRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := h.members.ChangeNickname(c.Request().Context(), member.ID, req.Nickname); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) UpdateProfileImage(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to read image file")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "failed to read image file")
	}

	imageURL, err := h.members.UpdateProfileImage(
		c.Request().Context(),
		member.ID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

func (h *MemberHandler) Block(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	blockedID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid member id")
	}
	if err := h.members.Block(c.Request().Context(), member.ID, blockedID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) Unblock(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	blockedID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid member id")
	}
	if err := h.members.Unblock(c.Request().Context(), member.ID, blockedID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) ListBlocked(c echo.Context) error {
	member, ok := mw.MemberFromCtx(c)
	if !ok {
		return badRequest(c, "member not resolved")
	}
	blocked, err := h.members.ListBlocked(c.Request().Context(), member.ID)
	if err != nil {
		return writeError(c, err)
	}
	return res.JSON(c, http.StatusOK, blocked)
}
