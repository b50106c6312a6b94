package model

// CreateTaskReq 创建任务的请求体；owner由服务端强制指定，不接受传入
type CreateTaskReq struct {
	Description string `json:"description" binding:"required"`
	Completed   bool   `json:"completed"`
}
