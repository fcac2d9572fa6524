package dto

// ==================== 菜单可见性 ====================

// MenuSummary 员工可见的菜单摘要
type MenuSummary struct {
	ID             int64  `json:"id"`
	VendorID       int64  `json:"vendor_catering_id"`
	Name           string `json:"name"`
	Descriptions   string `json:"descriptions"`
	NutritionFacts string `json:"nutrition_facts"`
	ForDate        string `json:"for_date"`
}

// WeeklyMenuResponse 目标周的菜单，按日期分组
// 五个工作日都会出现，没有菜单的日期为空列表
type WeeklyMenuResponse struct {
	WeekStart string                   `json:"week_start"`
	ShiftID   int64                    `json:"shift_id"`
	Days      []string                 `json:"days"`
	Menus     map[string][]MenuSummary `json:"menus"`
}

// ==================== 菜单维护 ====================

// CreateMenuRequest 创建菜单
type CreateMenuRequest struct {
	VendorCateringID int64  `json:"vendor_catering_id" binding:"required,gt=0"`
	Name             string `json:"name" binding:"required,max=150"`
	Descriptions     string `json:"descriptions"`
	NutritionFacts   string `json:"nutrition_facts"`
	ForDate          string `json:"for_date" binding:"required,date"`
}

// UpdateMenuRequest 修改菜单内容（不含状态）
type UpdateMenuRequest struct {
	Name           string `json:"name" binding:"omitempty,max=150"`
	Descriptions   string `json:"descriptions"`
	NutritionFacts string `json:"nutrition_facts"`
	ForDate        string `json:"for_date" binding:"omitempty,date"`
}

// UpdateMenuStatusRequest 审核菜单
type UpdateMenuStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected"`
	Notes  string `json:"notes" binding:"max=1000"`
}

// MenuListRequest 菜单列表
type MenuListRequest struct {
	VendorCateringID int64  `form:"vendor_catering_id"`
	Status           string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	From             string `form:"from" binding:"omitempty,date"`
	To               string `form:"to" binding:"omitempty,date"`
}
