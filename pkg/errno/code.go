package errno

import "fmt"

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrParameterInvalid = &Errno{Code: 400, Message: "Invalid parameter %s"}
	ErrInvalidParam     = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrNotFound         = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam     = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrFileNameIllegal  = &Errno{Code: 20002, Message: "File name is illegal"}
	ErrChunkMissing     = &Errno{Code: 20003, Message: "No chunk received"}
	ErrChunkAppend      = &Errno{Code: 20004, Message: "Failed to store chunk"}
	ErrChunkIndexRange  = &Errno{Code: 20005, Message: "Chunk index out of declared range"}
	ErrUploadMissing    = &Errno{Code: 20006, Message: "Uploaded file not found"}
	// 分离管线错误码
	ErrJobInFlight    = &Errno{Code: 20010, Message: "Job for this file is already processing"}
	ErrJobQueueFull   = &Errno{Code: 20011, Message: "Separation queue is full"}
	ErrJobKeyRequired = &Errno{Code: 20012, Message: "Job key is required"}
)

// BizError 业务错误，携带底层原因
type BizError struct {
	Errno *Errno
	Cause error
}

// NewBizError 用底层错误包装业务错误码
func NewBizError(errno *Errno, cause error) *BizError {
	return &BizError{Errno: errno, Cause: cause}
}

func (e *BizError) Error() string {
	if e.Cause == nil {
		return e.Errno.Message
	}
	return fmt.Sprintf("%s: %v", e.Errno.Message, e.Cause)
}

func (e *BizError) Unwrap() error {
	return e.Cause
}
