package borrow

import (
	"context"

	"github.com/xiebiao/library/internal/domain/borrow"
)

// QuerySlipsUseCase 借阅单查询，只读不开事务
type QuerySlipsUseCase struct {
	deps Deps
}

func NewQuerySlipsUseCase(deps Deps) *QuerySlipsUseCase {
	return &QuerySlipsUseCase{deps: deps}
}

func (uc *QuerySlipsUseCase) List(ctx context.Context) ([]*SlipResponse, error) {
	slips, err := uc.deps.Slips.List(ctx)
	if err != nil {
		return nil, err
	}
	return toSlipResponses(slips), nil
}

func (uc *QuerySlipsUseCase) Get(ctx context.Context, id uint) (*SlipResponse, error) {
	s, err := uc.deps.Slips.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSlipResponse(s), nil
}

func (uc *QuerySlipsUseCase) ByReader(ctx context.Context, readerID uint) ([]*SlipResponse, error) {
	slips, err := uc.deps.Slips.ListByReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	return toSlipResponses(slips), nil
}

func (uc *QuerySlipsUseCase) ByBook(ctx context.Context, bookID uint) ([]*SlipResponse, error) {
	slips, err := uc.deps.Slips.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return toSlipResponses(slips), nil
}

// ByCreatedAt input 为日期或完整时间，规则见 borrow.ParseCreatedAt
func (uc *QuerySlipsUseCase) ByCreatedAt(ctx context.Context, input string) ([]*SlipResponse, error) {
	filter, err := borrow.ParseCreatedAt(input, uc.deps.location())
	if err != nil {
		return nil, err
	}

	var slips []*borrow.Slip
	if filter.Exact != nil {
		slips, err = uc.deps.Slips.ListByCreatedAt(ctx, *filter.Exact)
	} else {
		slips, err = uc.deps.Slips.ListByCreatedBetween(ctx, filter.From, filter.To)
	}
	if err != nil {
		return nil, err
	}
	return toSlipResponses(slips), nil
}
