package handler

import (
	"github.com/gin-gonic/gin"

	"vault-core/internal/handler/middleware"
	"vault-core/internal/handler/request"
	"vault-core/internal/handler/response"
	"vault-core/internal/service"
	"vault-core/pkg/errno"
	"vault-core/pkg/validator"
)

// VaultHandler 金库 HTTP 接口
type VaultHandler struct {
	accounts *service.AccountService
	deposits *service.DepositService
	withdraw *service.WithdrawService
}

func NewVaultHandler(accounts *service.AccountService, deposits *service.DepositService, withdraw *service.WithdrawService) *VaultHandler {
	return &VaultHandler{
		accounts: accounts,
		deposits: deposits,
		withdraw: withdraw,
	}
}

// Register 注册账户
// @Summary 注册账户
// @Description 为调用者创建金库账户并返回专属存款地址
// @Tags Vault
// @Accept json
// @Produce json
// @Param X-Vault-Principal header string true "Caller principal"
// @Success 200 {object} response.Response
// @Router /api/v1/vault/register [post]
func (h *VaultHandler) Register(c *gin.Context) {
	rec, err := h.accounts.Register(c.Request.Context(), middleware.Caller(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"principal":       rec.Principal,
		"deposit_address": rec.DepositAddress.String(),
		"amount":          rec.Amount,
	})
}

// Deposit 对账入金
// @Summary 对账入金
// @Description 查询调用者存款地址在外部账本上的余额并折入金库余额
// @Tags Vault
// @Accept json
// @Produce json
// @Param X-Vault-Principal header string true "Caller principal"
// @Success 200 {object} response.Response
// @Router /api/v1/vault/deposit [post]
func (h *VaultHandler) Deposit(c *gin.Context) {
	caller := middleware.Caller(c)
	newFunds, err := h.deposits.Reconcile(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, _ := h.accounts.QueryDetail(c.Request.Context(), caller)
	response.Success(c, gin.H{
		"new_funds": newFunds,
		"amount":    rec.Amount,
	})
}

// Withdraw 申请提现
// @Summary 申请提现
// @Description 从调用者余额向目标地址转账, 金额含手续费
// @Tags Vault
// @Accept json
// @Produce json
// @Param X-Vault-Principal header string true "Caller principal"
// @Param request body request.WithdrawRequest true "Withdraw Request"
// @Success 200 {object} response.Response
// @Router /api/v1/vault/withdraw [post]
func (h *VaultHandler) Withdraw(c *gin.Context) {
	var req request.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	res, err := h.withdraw.Withdraw(c.Request.Context(), middleware.Caller(c), req.ToAddress, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"withdrawal_id": res.WithdrawalID,
		"ledger_tx_id":  res.LedgerTxID,
		"amount":        res.Amount,
		"fee":           res.Fee,
		"balance":       res.Balance,
	})
}

// Detail 查询账户
// @Summary 查询账户
// @Description 返回调用者的存款地址和当前缓存余额 (两次对账之间是本地估计)
// @Tags Vault
// @Accept json
// @Produce json
// @Param X-Vault-Principal header string true "Caller principal"
// @Success 200 {object} response.Response
// @Router /api/v1/vault/detail [get]
func (h *VaultHandler) Detail(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller.IsAnonymous() {
		response.Error(c, errno.ErrAnonymousCaller)
		return
	}

	rec, ok := h.accounts.QueryDetail(c.Request.Context(), caller)
	if !ok {
		response.Error(c, errno.ErrNotRegistered)
		return
	}

	response.Success(c, gin.H{
		"principal":       rec.Principal,
		"deposit_address": rec.DepositAddress.String(),
		"amount":          rec.Amount,
	})
}
