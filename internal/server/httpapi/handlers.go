package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
)

// The handler depends on narrow service interfaces so tests can substitute
// fakes without a database.

type UserService interface {
	Register(ctx context.Context, owner, password string) (*models.User, error)
	Login(ctx context.Context, owner, password string) (string, error)
	Get(ctx context.Context, owner string) (*models.User, error)
	Balances(ctx context.Context, owner string) (map[tokenledger.Asset]uint64, error)
}

type ConfigService interface {
	Init(ctx context.Context, cfg *models.Config) error
	Get(ctx context.Context) (*models.Config, error)
	UpdateParams(ctx context.Context, caller string, claimDelay, redeemDelay, cliffPeriod, linearVestingPeriod int64) error
	UpdateAuthority(ctx context.Context, caller, newAuthority string) error
	FundAccount(ctx context.Context, caller, owner string, asset tokenledger.Asset, amount uint64) error
}

type DepositService interface {
	DepositLocked(ctx context.Context, owner string, amount uint64, isMSRM bool) (*models.DepositAccount, *models.ClaimTicket, error)
	DepositVest(ctx context.Context, owner string, amount uint64, isMSRM bool) (*models.DepositAccount, *models.ClaimTicket, error)
}

type ClaimService interface {
	Claim(ctx context.Context, owner, ticketID string) (*models.ClaimTicket, error)
	ListTickets(ctx context.Context, owner string) ([]*models.ClaimTicket, error)
}

type BurnService interface {
	BurnLocked(ctx context.Context, owner, accountID string, amount uint64) (*models.RedeemTicket, error)
	BurnVest(ctx context.Context, owner, accountID string, amount uint64) (*models.RedeemTicket, error)
	ListAccounts(ctx context.Context, owner string) ([]*models.DepositAccount, error)
}

type RedeemService interface {
	Redeem(ctx context.Context, owner, ticketID string) (*models.RedeemTicket, error)
	ListTickets(ctx context.Context, owner string) ([]*models.RedeemTicket, error)
}

type StatementService interface {
	Export(ctx context.Context, owner string) (string, error)
}

// Services bundles everything the API serves.
type Services struct {
	Users      UserService
	Config     ConfigService
	Deposits   DepositService
	Claims     ClaimService
	Burns      BurnService
	Redeems    RedeemService
	Statements StatementService
}

type handler struct {
	services *Services
}

// --- response shapes ---

type userResponse struct {
	Owner     string `json:"owner"`
	LockIndex uint64 `json:"lock_index"`
	VestIndex uint64 `json:"vest_index"`
}

type depositResponse struct {
	ID                  string `json:"id"`
	Owner               string `json:"owner"`
	Kind                string `json:"kind"`
	Index               uint64 `json:"index"`
	RedeemIndex         uint64 `json:"redeem_index"`
	IsMSRM              bool   `json:"is_msrm"`
	CreatedAt           int64  `json:"created_at"`
	CliffPeriod         int64  `json:"cliff_period"`
	LinearVestingPeriod int64  `json:"linear_vesting_period"`
	TotalGSRMAmount     uint64 `json:"total_gsrm_amount"`
	GSRMBurned          uint64 `json:"gsrm_burned"`
}

type claimTicketResponse struct {
	ID             string `json:"id"`
	DepositAccount string `json:"deposit_account"`
	CreatedAt      int64  `json:"created_at"`
	ClaimDelay     int64  `json:"claim_delay"`
	GSRMAmount     uint64 `json:"gsrm_amount"`
}

type redeemTicketResponse struct {
	ID             string `json:"id"`
	DepositAccount string `json:"deposit_account"`
	RedeemIndex    uint64 `json:"redeem_index"`
	IsMSRM         bool   `json:"is_msrm"`
	CreatedAt      int64  `json:"created_at"`
	RedeemDelay    int64  `json:"redeem_delay"`
	Amount         uint64 `json:"amount"`
}

type configResponse struct {
	ConfigAuthority     string `json:"config_authority"`
	SRMMint             string `json:"srm_mint"`
	MSRMMint            string `json:"msrm_mint"`
	ClaimDelay          int64  `json:"claim_delay"`
	RedeemDelay         int64  `json:"redeem_delay"`
	CliffPeriod         int64  `json:"cliff_period"`
	LinearVestingPeriod int64  `json:"linear_vesting_period"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{Owner: u.Owner, LockIndex: u.LockIndex, VestIndex: u.VestIndex}
}

func toDepositResponse(d *models.DepositAccount) depositResponse {
	return depositResponse{
		ID:                  d.ID,
		Owner:               d.Owner,
		Kind:                string(d.Kind),
		Index:               d.Index,
		RedeemIndex:         d.RedeemIndex,
		IsMSRM:              d.IsMSRM,
		CreatedAt:           d.CreatedAt,
		CliffPeriod:         d.CliffPeriod,
		LinearVestingPeriod: d.LinearVestingPeriod,
		TotalGSRMAmount:     d.TotalGSRMAmount,
		GSRMBurned:          d.GSRMBurned,
	}
}

func toClaimTicketResponse(t *models.ClaimTicket) claimTicketResponse {
	return claimTicketResponse{
		ID:             t.ID,
		DepositAccount: t.DepositAccount,
		CreatedAt:      t.CreatedAt,
		ClaimDelay:     t.ClaimDelay,
		GSRMAmount:     t.GSRMAmount,
	}
}

func toRedeemTicketResponse(t *models.RedeemTicket) redeemTicketResponse {
	return redeemTicketResponse{
		ID:             t.ID,
		DepositAccount: t.DepositAccount,
		RedeemIndex:    t.RedeemIndex,
		IsMSRM:         t.IsMSRM,
		CreatedAt:      t.CreatedAt,
		RedeemDelay:    t.RedeemDelay,
		Amount:         t.Amount,
	}
}

func toConfigResponse(c *models.Config) configResponse {
	return configResponse{
		ConfigAuthority:     c.ConfigAuthority,
		SRMMint:             c.SRMMint,
		MSRMMint:            c.MSRMMint,
		ClaimDelay:          c.ClaimDelay,
		RedeemDelay:         c.RedeemDelay,
		CliffPeriod:         c.CliffPeriod,
		LinearVestingPeriod: c.LinearVestingPeriod,
	}
}

// --- handlers ---

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner    string `json:"owner"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user, err := h.services.Users.Register(r.Context(), payload.Owner, payload.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner    string `json:"owner"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.services.Users.Login(r.Context(), payload.Owner, payload.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (h *handler) user(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.Users.Get(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.services.Users.Balances(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
	IsMSRM bool   `json:"is_msrm"`
}

type depositCreatedResponse struct {
	Deposit     depositResponse     `json:"deposit"`
	ClaimTicket claimTicketResponse `json:"claim_ticket"`
}

func (h *handler) depositLocked(w http.ResponseWriter, r *http.Request) {
	h.deposit(w, r, h.services.Deposits.DepositLocked)
}

func (h *handler) depositVest(w http.ResponseWriter, r *http.Request) {
	h.deposit(w, r, h.services.Deposits.DepositVest)
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, owner string, amount uint64, isMSRM bool) (*models.DepositAccount, *models.ClaimTicket, error)) {

	var payload depositRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	deposit, ticket, err := fn(r.Context(), ownerFromContext(r.Context()), payload.Amount, payload.IsMSRM)
	metrics.RecordEngineOperation("deposit", time.Since(start), err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositCreatedResponse{
		Deposit:     toDepositResponse(deposit),
		ClaimTicket: toClaimTicketResponse(ticket),
	})
}

func (h *handler) listDeposits(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.services.Burns.ListAccounts(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]depositResponse, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, toDepositResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) claim(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TicketID string `json:"ticket_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	ticket, err := h.services.Claims.Claim(r.Context(), ownerFromContext(r.Context()), payload.TicketID)
	metrics.RecordEngineOperation("claim", time.Since(start), err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimTicketResponse(ticket))
}

func (h *handler) listClaimTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.services.Claims.ListTickets(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]claimTicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toClaimTicketResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type burnRequest struct {
	AccountID string `json:"account_id"`
	Amount    uint64 `json:"amount"`
}

func (h *handler) burnLocked(w http.ResponseWriter, r *http.Request) {
	h.burn(w, r, h.services.Burns.BurnLocked)
}

func (h *handler) burnVest(w http.ResponseWriter, r *http.Request) {
	h.burn(w, r, h.services.Burns.BurnVest)
}

func (h *handler) burn(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, owner, accountID string, amount uint64) (*models.RedeemTicket, error)) {

	var payload burnRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	ticket, err := fn(r.Context(), ownerFromContext(r.Context()), payload.AccountID, payload.Amount)
	metrics.RecordEngineOperation("burn", time.Since(start), err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRedeemTicketResponse(ticket))
}

func (h *handler) redeem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TicketID string `json:"ticket_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	ticket, err := h.services.Redeems.Redeem(r.Context(), ownerFromContext(r.Context()), payload.TicketID)
	metrics.RecordEngineOperation("redeem", time.Since(start), err)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRedeemTicketResponse(ticket))
}

func (h *handler) listRedeemTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.services.Redeems.ListTickets(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]redeemTicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toRedeemTicketResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.services.Config.Get(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}

func (h *handler) initConfig(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SRMMint             string `json:"srm_mint"`
		MSRMMint            string `json:"msrm_mint"`
		ClaimDelay          int64  `json:"claim_delay"`
		RedeemDelay         int64  `json:"redeem_delay"`
		CliffPeriod         int64  `json:"cliff_period"`
		LinearVestingPeriod int64  `json:"linear_vesting_period"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// the initializer becomes the config authority
	cfg := &models.Config{
		ConfigAuthority:     ownerFromContext(r.Context()),
		SRMMint:             payload.SRMMint,
		MSRMMint:            payload.MSRMMint,
		ClaimDelay:          payload.ClaimDelay,
		RedeemDelay:         payload.RedeemDelay,
		CliffPeriod:         payload.CliffPeriod,
		LinearVestingPeriod: payload.LinearVestingPeriod,
	}
	if err := h.services.Config.Init(r.Context(), cfg); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toConfigResponse(cfg))
}

func (h *handler) updateConfigParams(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ClaimDelay          int64 `json:"claim_delay"`
		RedeemDelay         int64 `json:"redeem_delay"`
		CliffPeriod         int64 `json:"cliff_period"`
		LinearVestingPeriod int64 `json:"linear_vesting_period"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := h.services.Config.UpdateParams(r.Context(), ownerFromContext(r.Context()),
		payload.ClaimDelay, payload.RedeemDelay, payload.CliffPeriod, payload.LinearVestingPeriod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) updateConfigAuthority(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		NewAuthority string `json:"new_authority"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.services.Config.UpdateAuthority(r.Context(), ownerFromContext(r.Context()), payload.NewAuthority); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) fundAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Owner  string `json:"owner"`
		Asset  string `json:"asset"`
		Amount uint64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := h.services.Config.FundAccount(r.Context(), ownerFromContext(r.Context()),
		payload.Owner, tokenledger.Asset(payload.Asset), payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) statement(w http.ResponseWriter, r *http.Request) {
	url, err := h.services.Statements.Export(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// --- helpers ---

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writeServiceError maps the sentinel error taxonomy to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidTicketOwner):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, common.ErrTicketNotClaimable),
		errors.Is(err, common.ErrTooEarlyToVest),
		errors.Is(err, common.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidGSRMAmount),
		errors.Is(err, common.ErrInvalidMSRMAmount),
		errors.Is(err, common.ErrInvalidDepositKind),
		errors.Is(err, common.ErrInvalidRedeemTicket),
		errors.Is(err, common.ErrInsufficientBalance),
		errors.Is(err, common.ErrOverflow):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
