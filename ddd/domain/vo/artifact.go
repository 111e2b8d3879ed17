package vo

// RetentionClass 产物保留策略
type RetentionClass string

const (
	// RetentionIntermediate 中间产物，成功后立即删除
	RetentionIntermediate RetentionClass = "intermediate"
	// RetentionFinal 最终产物，保留窗口到期后删除
	RetentionFinal RetentionClass = "final"
	// RetentionOrphan 失败残留产物
	RetentionOrphan RetentionClass = "orphan"
)

// Artifact 某一阶段落盘的产物
type Artifact struct {
	Path      string
	Stage     JobStage
	Retention RetentionClass
	// IsDir 目录型产物（分离模型输出目录）
	IsDir bool
}
