package character

import "github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"

// Swatch is one colour of a styling palette.
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Styling is a pre-authored look. Profiles copy it verbatim into their styling variants.
type Styling struct {
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Image        string   `json:"image"`
	Palette      []Swatch `json:"palette"`
	Materials    []string `json:"materials"`
	Tailoring    string   `json:"tailoring"`
	Narrative    string   `json:"narrative"`
	DirectorNote string   `json:"directorNote"`
}

// Character is a catalog entry. Traits are prompt context only; matching is left to the LLM.
type Character struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	NameEn   string    `json:"nameEn"`
	Movie    string    `json:"movie"`
	MovieEn  string    `json:"movieEn"`
	Traits   []string  `json:"traits"`
	Stylings []Styling `json:"stylings"`
}

// DisplayName returns the locale-appropriate name.
func (c Character) DisplayName(loc locale.Locale) string {
	if loc == locale.EN && c.NameEn != "" {
		return c.NameEn
	}
	return c.Name
}

// DisplayMovie returns the locale-appropriate movie title.
func (c Character) DisplayMovie(loc locale.Locale) string {
	if loc == locale.EN && c.MovieEn != "" {
		return c.MovieEn
	}
	return c.Movie
}

// FirstStyling returns the primary look, if the character has one.
func (c Character) FirstStyling() (Styling, bool) {
	if len(c.Stylings) == 0 {
		return Styling{}, false
	}
	return c.Stylings[0], true
}

// Seed provides the built-in catalog loaded at startup.
func Seed() []Character {
	return []Character{
		{
			ID:      "amelie-poulain",
			Name:    "艾米丽·普兰",
			NameEn:  "Amélie Poulain",
			Movie:   "天使爱美丽",
			MovieEn: "Amélie",
			Traits:  []string{"古灵精怪", "内向", "善于观察", "热心助人", "活在想象里"},
			Stylings: []Styling{
				{
					Title:        "蒙马特的红",
					Subtitle:     "Montmartre Red",
					Image:        "/images/characters/amelie-poulain/look-1.jpg",
					Palette:      []Swatch{{Name: "樱桃红", Hex: "#B3202A"}, {Name: "苔藓绿", Hex: "#4E6B3A"}, {Name: "暖金", Hex: "#D9A441"}},
					Materials:    []string{"针织开衫", "棉质连衣裙", "玛丽珍鞋"},
					Tailoring:    "及膝A字裙摆，短款开衫收在腰线以上。",
					Narrative:    "她走过咖啡馆的时候，整条街都被调成了暖色。",
					DirectorNote: "保持一个秘密，让镜头替你把它藏好。",
				},
				{
					Title:     "雨夜的照相亭",
					Subtitle:  "Photobooth Night",
					Image:     "/images/characters/amelie-poulain/look-2.jpg",
					Palette:   []Swatch{{Name: "墨绿", Hex: "#1F3B2D"}, {Name: "旧黄", Hex: "#C9A86A"}},
					Materials: []string{"呢料短外套", "贝雷帽"},
					Tailoring: "短外套略宽松，领口翻出白色衬衫领。",
				},
			},
		},
		{
			ID:      "holly-golightly",
			Name:    "霍莉·戈莱特丽",
			NameEn:  "Holly Golightly",
			Movie:   "蒂凡尼的早餐",
			MovieEn: "Breakfast at Tiffany's",
			Traits:  []string{"优雅", "自由", "不安", "社交达人", "渴望归属"},
			Stylings: []Styling{
				{
					Title:        "第五大道清晨",
					Subtitle:     "Fifth Avenue Dawn",
					Image:        "/images/characters/holly-golightly/look-1.jpg",
					Palette:      []Swatch{{Name: "纯黑", Hex: "#0B0B0B"}, {Name: "珍珠白", Hex: "#F2EFE8"}},
					Materials:    []string{"缎面小黑裙", "珍珠项链", "长手套"},
					Tailoring:    "收腰直身裙，肩线利落，裙长及踝。",
					Narrative:    "橱窗前的一杯咖啡，是她给自己的一点体面。",
					DirectorNote: "墨镜后面的眼神比台词更重要。",
				},
			},
		},
		{
			ID:      "chow-mo-wan",
			Name:    "周慕云",
			NameEn:  "Chow Mo-wan",
			Movie:   "花样年华",
			MovieEn: "In the Mood for Love",
			Traits:  []string{"克制", "深情", "沉默", "文人气质", "犹豫"},
			Stylings: []Styling{
				{
					Title:        "走廊里的烟",
					Subtitle:     "Smoke in the Corridor",
					Image:        "/images/characters/chow-mo-wan/look-1.jpg",
					Palette:      []Swatch{{Name: "深灰", Hex: "#2E2E30"}, {Name: "琥珀", Hex: "#A8642A"}},
					Materials:    []string{"精纺羊毛西装", "细窄领带", "发蜡"},
					Tailoring:    "高腰西裤，上衣肩部贴合，背头一丝不乱。",
					Narrative:    "他总是晚一步，连告别都落在雨后。",
					DirectorNote: "少说一句，让沉默替你说完。",
				},
			},
		},
		{
			ID:      "su-li-zhen",
			Name:    "苏丽珍",
			NameEn:  "Su Li-zhen",
			Movie:   "花样年华",
			MovieEn: "In the Mood for Love",
			Traits:  []string{"端庄", "隐忍", "敏感", "讲究", "孤独"},
			Stylings: []Styling{
				{
					Title:        "二十三件旗袍",
					Subtitle:     "Twenty-three Qipaos",
					Image:        "/images/characters/su-li-zhen/look-1.jpg",
					Palette:      []Swatch{{Name: "胭脂", Hex: "#8E2C3A"}, {Name: "孔雀蓝", Hex: "#1E5A6B"}, {Name: "米白", Hex: "#EDE3D1"}},
					Materials:    []string{"真丝旗袍", "高领", "保温壶"},
					Tailoring:    "高立领贴合颈线，腰身收紧，开衩不过膝。",
					Narrative:    "去买一碗云吞面，也要穿得像赴一场约。",
					DirectorNote: "每一次转身都要慢半拍。",
				},
			},
		},
		{
			ID:      "margot-tenenbaum",
			Name:    "玛戈·特南鲍姆",
			NameEn:  "Margot Tenenbaum",
			Movie:   "天才一族",
			MovieEn: "The Royal Tenenbaums",
			Traits:  []string{"神秘", "才华", "疏离", "叛逆", "忧郁"},
			Stylings: []Styling{
				{
					Title:        "浴缸里的剧作家",
					Subtitle:     "Playwright in the Bath",
					Image:        "/images/characters/margot-tenenbaum/look-1.jpg",
					Palette:      []Swatch{{Name: "驼色", Hex: "#B08A5B"}, {Name: "网球红", Hex: "#A7362E"}},
					Materials:    []string{"貂皮大衣", "条纹网球裙", "乐福鞋"},
					Tailoring:    "大衣长及小腿，内搭短裙形成强烈比例。",
					Narrative:    "她的秘密比她的剧本还多。",
					DirectorNote: "眼线要重，表情要轻。",
				},
			},
		},
		{
			ID:      "mia-dolan",
			Name:    "米娅·多兰",
			NameEn:  "Mia Dolan",
			Movie:   "爱乐之城",
			MovieEn: "La La Land",
			Traits:  []string{"追梦", "热情", "倔强", "浪漫", "自我怀疑"},
			Stylings: []Styling{
				{
					Title:        "格里菲斯天文台的黄裙",
					Subtitle:     "Yellow at Griffith",
					Image:        "/images/characters/mia-dolan/look-1.jpg",
					Palette:      []Swatch{{Name: "明黄", Hex: "#F2C12E"}, {Name: "夜蓝", Hex: "#1C2B4A"}},
					Materials:    []string{"雪纺中长裙", "踢踏舞鞋"},
					Tailoring:    "方领短袖，裙摆在旋转时展开成圆。",
					Narrative:    "试镜落选的那天晚上，她还是跳完了那支舞。",
					DirectorNote: "颜色要比情绪先到场。",
				},
			},
		},
		{
			ID:      "leon",
			Name:    "里昂",
			NameEn:  "Léon",
			Movie:   "这个杀手不太冷",
			MovieEn: "Léon: The Professional",
			Traits:  []string{"孤僻", "纪律", "纯粹", "守护者", "笨拙的温柔"},
			Stylings: []Styling{
				{
					Title:        "盆栽与圆墨镜",
					Subtitle:     "The Plant and the Shades",
					Image:        "/images/characters/leon/look-1.jpg",
					Palette:      []Swatch{{Name: "橄榄", Hex: "#5B5A3A"}, {Name: "炭黑", Hex: "#1B1B1B"}},
					Materials:    []string{"羊毛长大衣", "针织帽", "圆框墨镜"},
					Tailoring:    "大衣略长略宽，裤脚偏短露出靴口。",
					Narrative:    "他把唯一的根留在一只花盆里。",
					DirectorNote: "动作要少，每一个都要准确。",
				},
			},
		},
		{
			ID:      "clementine-kruczynski",
			Name:    "克莱门汀",
			NameEn:  "Clementine Kruczynski",
			Movie:   "暖暖内含光",
			MovieEn: "Eternal Sunshine of the Spotless Mind",
			Traits:  []string{"冲动", "坦率", "多变", "怕被遗忘", "鲜艳"},
			Stylings: []Styling{
				{
					Title:        "橙色连帽衫",
					Subtitle:     "Tangerine Hoodie",
					Image:        "/images/characters/clementine-kruczynski/look-1.jpg",
					Palette:      []Swatch{{Name: "橘橙", Hex: "#E86A1C"}, {Name: "冰蓝", Hex: "#7FB7D9"}},
					Materials:    []string{"连帽卫衣", "格纹围巾", "彩色发色"},
					Tailoring:    "宽松叠穿，外套永远敞开。",
					Narrative:    "她的发色记录着每一次想重新开始。",
					DirectorNote: "让她在画面里是唯一的亮色。",
				},
			},
		},
	}
}
