package renderer

import "github.com/ByLCY/bytecv/layout"

// Renderer 将排版结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Surface 同时负责测量与绘制：折行测量与最终输出使用同一套字体度量，
// 预览中的装箱结果因此与导出文件一致。
type Surface interface {
	layout.Typesetter
	Renderer
}
