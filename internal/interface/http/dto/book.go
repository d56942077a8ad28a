package dto

// CreateBookRequest 新书入库
// price 单位为分；quantity 为馆藏册数，入库时全部在架
type CreateBookRequest struct {
	BookCode    string `json:"bookCode" binding:"required,max=32" example:"TS-0001"`
	Title       string `json:"title" binding:"required,max=200" example:"三体"`
	ISBN        string `json:"isbn" binding:"max=20" example:"9787536692930"`
	PublishYear int    `json:"publishYear" binding:"min=0,max=9999" example:"2008"`
	Price       int64  `json:"price" binding:"min=0" example:"2350"`
	Quantity    int    `json:"quantity" binding:"min=0" example:"5"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateBookRequest 修改图书，空字段不修改
// totalQuantity 变化时在架数同步增减，不能少于已借出册数
type UpdateBookRequest struct {
	Title         string `json:"title" binding:"max=200"`
	ISBN          string `json:"isbn" binding:"max=20"`
	PublishYear   int    `json:"publishYear" binding:"min=0,max=9999"`
	Price         int64  `json:"price" binding:"min=0"`
	TotalQuantity *int   `json:"totalQuantity" binding:"omitempty,min=0" example:"8"`
	Description   string `json:"description" binding:"max=5000"`
}

// DeleteBookResponse soft=true 表示有借阅记录，只做了下架
type DeleteBookResponse struct {
	Soft bool `json:"soft"`
}
