package entity

// FaceBox представляет прямоугольную область лица на изображении
type FaceBox struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
}

// Center возвращает координаты центра области
func (b FaceBox) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area возвращает площадь области в пикселях
func (b FaceBox) Area() int {
	return b.Width * b.Height
}

// Empty сообщает, что у области нет площади
func (b FaceBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}
