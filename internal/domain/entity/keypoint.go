package entity

// KeypointRole семантическая роль точки лица
type KeypointRole string

const (
	RoleForehead       KeypointRole = "forehead"        // центр лба
	RoleLeftCheekbone  KeypointRole = "left_cheekbone"  // левая скула
	RoleRightCheekbone KeypointRole = "right_cheekbone" // правая скула
	RoleLeftJaw        KeypointRole = "left_jaw"        // левый угол челюсти
	RoleRightJaw       KeypointRole = "right_jaw"       // правый угол челюсти
	RoleChin           KeypointRole = "chin"            // подбородок
	RoleLeftTemple     KeypointRole = "left_temple"     // левый висок
	RoleRightTemple    KeypointRole = "right_temple"    // правый висок
)

// KeypointRoles фиксированный порядок точек в выходе любого бэкенда детекции.
var KeypointRoles = [...]KeypointRole{
	RoleForehead,
	RoleLeftCheekbone,
	RoleRightCheekbone,
	RoleLeftJaw,
	RoleRightJaw,
	RoleChin,
	RoleLeftTemple,
	RoleRightTemple,
}

// KeypointCount минимальное число точек, необходимое для измерений
const KeypointCount = len(KeypointRoles)

// Keypoint точка лица в координатах изображения.
// Создаётся бэкендом детекции и не меняется после этого.
type Keypoint struct {
	Role       KeypointRole `json:"role"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Z          float64      `json:"z,omitempty"`         // глубина, если бэкенд её отдаёт
	Confidence float64      `json:"confidence,omitempty"` // 0..1, 0 если бэкенд не оценивает точку
}
