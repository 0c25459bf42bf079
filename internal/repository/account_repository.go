package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type AccountRepository struct {
	DB *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func (r *AccountRepository) Create(account *model.Account) error {
	return r.DB.Create(account).Error
}

func (r *AccountRepository) FindByID(id uint) (*model.Account, error) {
	var account model.Account
	err := r.DB.First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Chain 沿父链上溯到根后反转：根账户在前，目标账户在后。
// 解析权限覆盖时按此顺序折叠，越靠近目标的覆盖越晚生效
func (r *AccountRepository) Chain(accountID uint) ([]model.Account, error) {
	var chain []model.Account
	id := &accountID
	for id != nil {
		account, err := r.FindByID(*id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *account)
		id = account.ParentAccountID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
