package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"disputeshield_back_end/internal/middleware"
	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/gorilla/sessions"
)

const (
	flowSessionName = "stripe_connect"
	// durée de vie du cookie entre la redirection vers Stripe et le callback
	flowSessionMaxAge = 10 * 60
)

type ConnectionFlow interface {
	Begin(userID, accountName string) (*services.PendingAuthorization, string, error)
	Complete(ctx context.Context, pending *services.PendingAuthorization, params services.CallbackParams) services.FlowResult
}

type ConnectionManager interface {
	List(ctx context.Context, userID string) ([]models.StripeConnection, error)
	Disconnect(ctx context.Context, userID string, id gocql.UUID) error
}

type DisputeSyncer interface {
	Sync(ctx context.Context, userID string, connectionID gocql.UUID) (int, error)
	MarkSynced(ctx context.Context, userID string, connectionID gocql.UUID) (time.Time, error)
}

// NewFlowSessionStore : cookie signé, court, qui porte le state OAuth jusqu'au callback.
// SameSite=Lax pour qu'il soit renvoyé lors de la redirection de Stripe.
func NewFlowSessionStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   flowSessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type StripeHandlerDeps struct {
	Exchanger    services.OAuthExchanger
	Flow         ConnectionFlow
	Connections  ConnectionManager
	Syncer       DisputeSyncer
	Sessions     sessions.Store
	DashboardURL string
}

type StripeHandler struct {
	exchanger    services.OAuthExchanger
	flow         ConnectionFlow
	connections  ConnectionManager
	syncer       DisputeSyncer
	sessions     sessions.Store
	dashboardURL string
}

func NewStripeHandler(deps StripeHandlerDeps) *StripeHandler {
	return &StripeHandler{
		exchanger:    deps.Exchanger,
		flow:         deps.Flow,
		connections:  deps.Connections,
		syncer:       deps.Syncer,
		sessions:     deps.Sessions,
		dashboardURL: deps.DashboardURL,
	}
}

// Exchange : POST /api/stripe/oauth/exchange
// Renvoie les identifiants Stripe sans les enregistrer.
func (h *StripeHandler) Exchange(c *gin.Context) {
	var req struct {
		Code        string `json:"code"`
		AccountName string `json:"accountName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code is required"})
		return
	}

	result, err := h.exchanger.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		status := http.StatusInternalServerError
		if services.KindOf(err) == services.KindValidation {
			status = http.StatusBadRequest
		}
		respondErrorStatus(c, status, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Connect : POST renvoie {url, state}, GET redirige directement vers Stripe.
// Dans les deux cas le state est posé dans le cookie de flux.
func (h *StripeHandler) Connect(c *gin.Context) {
	var req struct {
		AccountName string `json:"accountName" form:"accountName"`
	}
	_ = c.ShouldBind(&req)

	pending, authURL, err := h.flow.Begin(currentUser(c), req.AccountName)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.savePending(c, pending); err != nil {
		log.Printf("❌ Erreur écriture du cookie de flux Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start Stripe connection"})
		return
	}

	log.Printf("🔗 Connexion Stripe démarrée pour %s", pending.UserID)

	if c.Request.Method == http.MethodGet {
		c.Redirect(http.StatusFound, authURL)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": authURL, "state": pending.State})
}

// Callback : GET /stripe-callback, page HTML de fin de flux
func (h *StripeHandler) Callback(c *gin.Context) {
	params := services.CallbackParams{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}

	pending, session := h.loadPending(c)
	result := h.flow.Complete(c.Request.Context(), pending, params)

	// pas de JWT sur cette route : l'audit s'appuie sur l'utilisateur du cookie
	if pending != nil {
		c.Set("user_id", pending.UserID)
	}
	if result.Connection != nil {
		c.Set(middleware.AuditResourceKey, result.Connection.ID.String())
	}

	// le state est à usage unique, quelle que soit l'issue
	if session != nil {
		session.Values = map[interface{}]interface{}{}
		if session.Options != nil {
			session.Options.MaxAge = -1
		}
		if err := session.Save(c.Request, c.Writer); err != nil {
			log.Printf("⚠️ Suppression du cookie de flux échouée: %v", err)
		}
	}

	status := http.StatusOK
	if result.State != services.FlowSuccess {
		status = http.StatusBadRequest
		log.Printf("❌ Callback Stripe en erreur: %s", result.Message)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := callbackPage.Execute(c.Writer, callbackView{
		Success:      result.State == services.FlowSuccess,
		Message:      result.Message,
		DashboardURL: h.dashboardURL,
	}); err != nil {
		log.Printf("❌ Rendu de la page de callback échoué: %v", err)
	}
}

func (h *StripeHandler) savePending(c *gin.Context, pending *services.PendingAuthorization) error {
	session, err := h.sessions.Get(c.Request, flowSessionName)
	if session == nil {
		return err
	}
	// une deuxième tentative écrase la précédente
	session.Values["state"] = pending.State
	session.Values["account_name"] = pending.AccountName
	session.Values["user_id"] = pending.UserID
	return session.Save(c.Request, c.Writer)
}

func (h *StripeHandler) loadPending(c *gin.Context) (*services.PendingAuthorization, *sessions.Session) {
	session, err := h.sessions.Get(c.Request, flowSessionName)
	if err != nil {
		log.Printf("⚠️ Cookie de flux Stripe illisible: %v", err)
	}
	if session == nil {
		return nil, nil
	}

	state, _ := session.Values["state"].(string)
	if state == "" {
		return nil, session
	}
	accountName, _ := session.Values["account_name"].(string)
	userID, _ := session.Values["user_id"].(string)
	return &services.PendingAuthorization{State: state, AccountName: accountName, UserID: userID}, session
}

// ListConnections : GET /api/stripe/connections
func (h *StripeHandler) ListConnections(c *gin.Context) {
	conns, err := h.connections.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns, "count": len(conns)})
}

// Disconnect : POST /api/stripe/connections/:id/disconnect
func (h *StripeHandler) Disconnect(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.connections.Disconnect(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkSynced : POST /api/stripe/connections/:id/synced
func (h *StripeHandler) MarkSynced(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	at, err := h.syncer.MarkSynced(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "last_synced": at})
}

// FetchDisputes : POST /api/stripe/disputes/fetch
// Toute erreur autre qu'un identifiant manquant est rendue en 500.
func (h *StripeHandler) FetchDisputes(c *gin.Context) {
	var req struct {
		StripeConnectionID string `json:"stripeConnectionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.StripeConnectionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stripeConnectionId is required"})
		return
	}
	id, err := gocql.ParseUUID(strings.TrimSpace(req.StripeConnectionID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stripeConnectionId"})
		return
	}
	c.Set(middleware.AuditResourceKey, id.String())

	count, err := h.syncer.Sync(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondErrorStatus(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

type callbackView struct {
	Success      bool
	Message      string
	DashboardURL string
}

var callbackPage = template.Must(template.New("stripe-callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Stripe connection - DisputeShield</title>
<style>
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#f6f9fc;display:flex;align-items:center;justify-content:center;height:100vh;margin:0}
.card{background:#fff;border-radius:12px;box-shadow:0 4px 24px rgba(0,0,0,.08);padding:40px;max-width:420px;text-align:center}
h1{font-size:22px;margin:0 0 12px}
.ok{color:#16a34a}.ko{color:#dc2626}
a{color:#635bff}
</style>
</head>
<body>
<div class="card">
{{if .Success}}
<h1 class="ok">Stripe account connected</h1>
<p>{{.Message}}</p>
<p>Redirecting to your <a href="{{.DashboardURL}}">dashboard</a>...</p>
<script>setTimeout(function(){ window.location.href = {{.DashboardURL}}; }, 2000);</script>
{{else}}
<h1 class="ko">Connection failed</h1>
<p>{{.Message}}</p>
<p><a href="{{.DashboardURL}}">Try again</a></p>
{{end}}
</div>
</body>
</html>
`))
