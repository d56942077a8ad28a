package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBook *appbook.CreateBookUseCase
	updateBook *appbook.UpdateBookUseCase
	deleteBook *appbook.DeleteBookUseCase
	query      *appbook.QueryBooksUseCase
}

func NewBookHandler(
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	query *appbook.QueryBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBook: createBook,
		updateBook: updateBook,
		deleteBook: deleteBook,
		query:      query,
	}
}

// Create 新书入库
// @Summary      新书入库
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{result=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "图书编号已存在"
// @Router       /api/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		BookCode:    req.BookCode,
		Title:       req.Title,
		ISBN:        req.ISBN,
		PublishYear: req.PublishYear,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 在馆图书
// @Summary      图书列表
// @Description  不含已下架的书
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{result=[]appbook.BookResponse}
// @Router       /api/books [get]
func (h *BookHandler) List(c *gin.Context) {
	result, err := h.query.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{result=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
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

// Update 修改图书
// @Summary      修改图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改内容"
// @Success      200 {object} response.Response{result=appbook.BookResponse}
// @Failure      400 {object} response.Response "馆藏数量少于已借出数量"
// @Router       /api/books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:          id,
		Title:       req.Title,
		ISBN:        req.ISBN,
		PublishYear: req.PublishYear,
		Price:       req.Price,
		Quantity:    req.TotalQuantity,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除图书
// @Summary      删除图书
// @Description  有借阅记录的书只下架，否则物理删除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{result=dto.DeleteBookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	soft, err := h.deleteBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.DeleteBookResponse{Soft: soft})
}
