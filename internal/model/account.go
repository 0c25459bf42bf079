package model

// Account 账户树节点；根账户无父节点，子账户恰好引用一个父账户
type Account struct {
	BaseModel
	Name            string `gorm:"size:255;not null" json:"name"`
	ParentAccountID *uint  `gorm:"index" json:"parentAccountId"`
	RootAccountID   *uint  `gorm:"index" json:"rootAccountId"`
}

func (Account) TableName() string {
	return "accounts"
}

// IsRoot 根账户判定
func (a *Account) IsRoot() bool {
	return a.ParentAccountID == nil
}
