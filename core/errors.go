package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Sampler 错误：PRECONDITION（未 update 就 forward）
//   - Scorer 错误：INVALID_SCORER（非内积打分器）
//   - 参数错误：INVALID_INPUT（形状/维度/数量非法）
type DomainError struct {
	Code    string // 错误代码（如 "PRECONDITION", "INVALID_SCORER"）
	Message string // 错误消息
	Module  string // 模块名称（如 "sampler", "scorer", "config"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// ErrorCodePrecondition 表示调用顺序违反前置条件（如 forward 先于 update）
	ErrorCodePrecondition = "PRECONDITION"
	// ErrorCodeInvalidScorer 表示构造时传入了不满足内积能力的打分器
	ErrorCodeInvalidScorer = "INVALID_SCORER"
	// ErrorCodeInvalidInput 表示输入无效（形状、维度、数量）
	ErrorCodeInvalidInput = "INVALID_INPUT"
	// ErrorCodeInternalError 表示内部错误
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

// 模块名称常量
const (
	ModuleSampler = "sampler" // 采样模块
	ModuleScorer  = "scorer"  // 打分模块
	ModuleConfig  = "config"  // 配置模块
)

// 通用错误检查函数

// IsPrecondition 检查错误是否为 PRECONDITION
func IsPrecondition(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodePrecondition
	}
	return false
}

// IsInvalidScorer 检查错误是否为 INVALID_SCORER
func IsInvalidScorer(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidScorer
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
