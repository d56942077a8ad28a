package handler

import (
	"github.com/gin-gonic/gin"

	appborrow "github.com/xiebiao/library/internal/application/borrow"
	"github.com/xiebiao/library/internal/interface/http/dto"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// BorrowHandler 借阅单HTTP处理器
type BorrowHandler struct {
	createSlip      *appborrow.CreateSlipUseCase
	returnBook      *appborrow.ReturnBookUseCase
	updateSlip      *appborrow.UpdateSlipUseCase
	deleteSlip      *appborrow.DeleteSlipUseCase
	deleteUserSlips *appborrow.DeleteUserSlipsUseCase
	query           *appborrow.QuerySlipsUseCase
}

func NewBorrowHandler(
	createSlip *appborrow.CreateSlipUseCase,
	returnBook *appborrow.ReturnBookUseCase,
	updateSlip *appborrow.UpdateSlipUseCase,
	deleteSlip *appborrow.DeleteSlipUseCase,
	deleteUserSlips *appborrow.DeleteUserSlipsUseCase,
	query *appborrow.QuerySlipsUseCase,
) *BorrowHandler {
	return &BorrowHandler{
		createSlip:      createSlip,
		returnBook:      returnBook,
		updateSlip:      updateSlip,
		deleteSlip:      deleteSlip,
		deleteUserSlips: deleteUserSlips,
		query:           query,
	}
}

// Create 开借阅单
// @Summary      开借阅单
// @Description  一次借出多本书，任一本无库存则整单失败
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateSlipRequest true "借阅信息"
// @Success      200 {object} response.Response{result=appborrow.SlipResponse}
// @Failure      400 {object} response.Response "参数错误或无可借副本"
// @Failure      404 {object} response.Response "读者或图书不存在"
// @Router       /api/borrowSlips [post]
func (h *BorrowHandler) Create(c *gin.Context) {
	var req dto.CreateSlipRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.createSlip.Execute(c.Request.Context(), appborrow.CreateSlipRequest{
		ReaderID: req.ReaderID,
		BookIDs:  req.BookIDs,
		Note:     req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 全部借阅单
// @Summary      借阅单列表
// @Tags         借阅
// @Produce      json
// @Success      200 {object} response.Response{result=[]appborrow.SlipResponse}
// @Router       /api/borrowSlips [get]
func (h *BorrowHandler) List(c *gin.Context) {
	result, err := h.query.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 借阅单详情
// @Summary      借阅单详情
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response{result=appborrow.SlipResponse}
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /api/borrowSlips/{id} [get]
func (h *BorrowHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByUser 某读者的借阅单
// @Summary      按读者查询
// @Tags         借阅
// @Produce      json
// @Param        userId path int true "读者ID"
// @Success      200 {object} response.Response{result=[]appborrow.SlipResponse}
// @Router       /api/borrowSlips/user/{userId} [get]
func (h *BorrowHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	result, err := h.query.ByReader(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByBook 借过某本书的借阅单
// @Summary      按图书查询
// @Tags         借阅
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{result=[]appborrow.SlipResponse}
// @Router       /api/borrowSlips/book/{bookId} [get]
func (h *BorrowHandler) ListByBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	result, err := h.query.ByBook(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByCreatedAt 按创建时间查询
// @Summary      按创建时间查询
// @Description  yyyy-MM-dd 查询当天；带时间部分时精确匹配创建时刻
// @Tags         借阅
// @Produce      json
// @Param        createdAt query string true "日期或时间" example(2025-03-10)
// @Success      200 {object} response.Response{result=[]appborrow.SlipResponse}
// @Failure      400 {object} response.Response "日期格式错误"
// @Router       /api/borrowSlips/createdAt [get]
func (h *BorrowHandler) ListByCreatedAt(c *gin.Context) {
	createdAt := c.Query("createdAt")
	if createdAt == "" {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "缺少参数 createdAt")
		return
	}

	result, err := h.query.ByCreatedAt(c.Request.Context(), createdAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Return 归还一册
// @Summary      归还图书
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        detailId path int true "借阅明细ID"
// @Success      200 {object} response.Response{result=appborrow.DetailResponse}
// @Failure      400 {object} response.Response "已归还"
// @Failure      404 {object} response.Response "明细不存在"
// @Router       /api/borrowSlips/return/{detailId} [put]
func (h *BorrowHandler) Return(c *gin.Context) {
	detailID, ok := pathID(c, "detailId")
	if !ok {
		return
	}

	result, err := h.returnBook.Execute(c.Request.Context(), detailID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithResult(c, "归还成功", result)
}

// Update 修改借阅单
// @Summary      修改借阅单
// @Description  按新的图书集合增删明细，保留与新增的明细使用本次的借出日与到期日；readerId、note 不传则不修改
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Param        request body dto.UpdateSlipRequest true "修改内容"
// @Success      200 {object} response.Response{result=appborrow.SlipResponse}
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/borrowSlips/{id} [put]
func (h *BorrowHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSlipRequest
	if !bindJSON(c, &req) {
		return
	}
	borrowDate, dueDate, err := req.Dates()
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.updateSlip.Execute(c.Request.Context(), appborrow.UpdateSlipRequest{
		SlipID:     id,
		ReaderID:   req.ReaderID,
		BookIDs:    req.BookIDs,
		Note:       req.Note,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除借阅单
// @Summary      删除借阅单
// @Description  未归还的书回到在架
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅单ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "借阅单不存在"
// @Router       /api/borrowSlips/{id} [delete]
func (h *BorrowHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteSlip.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "借阅单已删除")
}

// DeleteByUser 删除读者的全部借阅单
// @Summary      删除读者全部借阅单
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "读者ID"
// @Success      200 {object} response.Response{result=dto.DeleteUserSlipsResponse}
// @Failure      400 {object} response.Response "读者没有借阅单"
// @Router       /api/borrowSlips/user/{userId} [delete]
func (h *BorrowHandler) DeleteByUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	deleted, err := h.deleteUserSlips.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.DeleteUserSlipsResponse{Deleted: deleted})
}
