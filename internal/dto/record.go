package dto

// BookedSlotsQuery 占用时段查询参数
type BookedSlotsQuery struct {
	Date string `form:"date" binding:"required,max=10"`
}
