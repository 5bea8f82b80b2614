package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconImage    = "\U000F02E9" // 󰋩
	IconVideo    = "\U000F0567" // 󰕧
	IconHeart    = "\U000F02D1" // 󰋑
	IconHeartOff = "\U000F02D5" // 󰋕
	IconStar     = "\U000F04CE" // 󰓎
	IconStarOff  = "\U000F04D2" // 󰓒
	IconCheck    = "\U000F012C" // 󰄬
	IconTrash    = "\U000F0A7A" // 󰩺
	IconTag      = "\U000F04F9" // 󰓹
	IconSearch   = "\U000F0349" // 󰍉
	IconShuffle  = "\U000F049D" // 󰒝

	IconNotifyInfo    = "\U000F02FC" // 󰋼
	IconNotifyWarning = "\U000F0026" // 󰀦
	IconNotifyError   = "\U000F0159" // 󰅙
)
