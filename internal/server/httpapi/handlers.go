package httpapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/envelope"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/labstack/echo/v4"
)

type signUpRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type folderRequest struct {
	Name string `json:"name"`
}

type updateUserRequest struct {
	UserName *string `json:"username"`
	Password *string `json:"password"`
}

func (s *Server) signUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}

	res, err := s.users.SignUp(c.Request().Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		return s.failService(c, err, envelope.MsgInvalidUser)
	}
	return s.ok(c, http.StatusCreated, envelope.MsgSuccess, res)
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}

	res, err := s.users.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.failService(c, err, envelope.MsgInvalidUser)
	}
	return s.ok(c, http.StatusOK, envelope.MsgSigninSuccess, res)
}

// signOut only clears the client cookie; tokens stay valid until they expire.
func (s *Server) signOut(c echo.Context) error {
	clearCookie(c, common.TokenCookieName, s.cfg.Production)
	return s.ok(c, http.StatusOK, envelope.MsgSignoutSuccess, nil)
}

func clearCookie(c echo.Context, name string, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) listFolders(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	list, err := s.folders.List(c.Request().Context(), userID)
	if err != nil {
		return s.failService(c, err, "User not found")
	}
	return s.ok(c, http.StatusOK, "Folders fetched successfully", list)
}

func (s *Server) createFolder(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}
	list, err := s.folders.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return s.failService(c, err, "User not found")
	}
	return s.ok(c, http.StatusCreated, "Folder created successfully", list)
}

func (s *Server) updateFolder(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}
	list, err := s.folders.Update(c.Request().Context(), userID, c.Param("id"), req.Name)
	if err != nil {
		return s.failService(c, err, "Folder not found")
	}
	return s.ok(c, http.StatusOK, "Folder updated successfully", list)
}

func (s *Server) deleteFolder(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	list, err := s.folders.Delete(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return s.failService(c, err, "Folder not found")
	}
	return s.ok(c, http.StatusOK, "Folder deleted successfully", list)
}

func (s *Server) listNotes(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	list, err := s.notes.List(c.Request().Context(), userID)
	if err != nil {
		return s.failService(c, err, "User not found")
	}
	return s.ok(c, http.StatusOK, "Notes fetched successfully", list)
}

func (s *Server) createNote(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	var req services.NotePatch
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}
	list, err := s.notes.Create(c.Request().Context(), userID, req)
	if err != nil {
		return s.failService(c, err, "User not found")
	}
	return s.ok(c, http.StatusCreated, "Note created successfully", list)
}

func (s *Server) updateNote(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	var req services.NotePatch
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}
	list, err := s.notes.Update(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return s.failService(c, err, "Note not found")
	}
	return s.ok(c, http.StatusOK, "Note updated successfully", list)
}

func (s *Server) deleteNote(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	list, err := s.notes.Delete(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return s.failService(c, err, "Note not found")
	}
	return s.ok(c, http.StatusOK, "Note deleted successfully", list)
}

func (s *Server) updateUser(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, http.StatusBadRequest, envelope.MsgInvalidBody, err)
	}
	user, err := s.users.UpdateCredentials(c.Request().Context(), userID,
		models.CredentialsUpdate{UserName: req.UserName, Password: req.Password})
	if err != nil {
		return s.failService(c, err, "User not found")
	}
	return s.ok(c, http.StatusOK, envelope.MsgSuccess, user.Public())
}

func (s *Server) deleteUser(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return s.failService(c, err, "")
	}
	if err := s.users.Delete(c.Request().Context(), userID); err != nil {
		return s.failService(c, err, "User not found")
	}
	clearCookie(c, common.TokenCookieName, s.cfg.Production)
	return s.ok(c, http.StatusOK, "User has been deleted!", nil)
}

func (s *Server) self(c echo.Context) error {
	return s.ok(c, http.StatusOK, envelope.MsgSuccess, nil)
}

type healthData struct {
	Application applicationHealth `json:"application"`
	System      systemHealth      `json:"system"`
	Timestamp   int64             `json:"timestamp"`
}

type applicationHealth struct {
	Environment string  `json:"environment"`
	Uptime      string  `json:"uptime"`
	HeapAllocMB float64 `json:"heapAllocMB"`
	Goroutines  int     `json:"goroutines"`
}

type systemHealth struct {
	CPUs      int    `json:"cpus"`
	GoVersion string `json:"goVersion"`
}

func (s *Server) health(c echo.Context) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	data := healthData{
		Application: applicationHealth{
			Environment: s.cfg.Environment,
			Uptime:      time.Since(s.started).Round(time.Second).String(),
			HeapAllocMB: float64(mem.HeapAlloc) / (1 << 20),
			Goroutines:  runtime.NumGoroutine(),
		},
		System: systemHealth{
			CPUs:      runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Timestamp: time.Now().UnixMilli(),
	}
	return s.ok(c, http.StatusOK, envelope.MsgSuccess, data)
}
