package model

// 内置角色（基础注册类型），所有账户可用
const (
	RoleAccountAdmin       = "AccountAdmin"
	RoleTeacherEnrollment  = "TeacherEnrollment"
	RoleTaEnrollment       = "TaEnrollment"
	RoleStudentEnrollment  = "StudentEnrollment"
	RoleObserverEnrollment = "ObserverEnrollment"
	RoleDesignerEnrollment = "DesignerEnrollment"
)

// Role 账户级自定义角色，名称在账户内唯一
type Role struct {
	BaseModel
	AccountID uint   `gorm:"uniqueIndex:idx_role_key;not null" json:"accountId"`
	Name      string `gorm:"uniqueIndex:idx_role_key;size:255;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// RoleOverride 某账户对 (角色, 权限) 的覆盖；
// Enabled/Locked 均可单独缺省，缺省字段沿覆盖链继承
type RoleOverride struct {
	BaseModel
	AccountID  uint   `gorm:"uniqueIndex:idx_override_key;not null" json:"accountId"`
	Role       string `gorm:"uniqueIndex:idx_override_key;size:255;not null" json:"role"`
	Permission string `gorm:"uniqueIndex:idx_override_key;size:255;not null" json:"permission"`
	Enabled    *bool  `json:"enabled"`
	Locked     *bool  `json:"locked"`
}

func (RoleOverride) TableName() string {
	return "role_overrides"
}

func BaseRoles() []string {
	return []string{
		RoleAccountAdmin,
		RoleTeacherEnrollment,
		RoleTaEnrollment,
		RoleStudentEnrollment,
		RoleObserverEnrollment,
		RoleDesignerEnrollment,
	}
}

func IsBaseRole(name string) bool {
	for _, r := range BaseRoles() {
		if r == name {
			return true
		}
	}
	return false
}
