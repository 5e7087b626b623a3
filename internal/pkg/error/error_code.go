package error

const (
	// 0 ~ 999: 成功類別
	SUCCESS = 0 // 200 OK

	// 40000 ~ 40099: 請求錯誤
	BAD_REQUEST_BODY   = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS = 40001 // 400 - 無效的請求參數
	MISSING_FIELDS     = 40006 // 400 - 必填欄位缺漏

	// 40100 ~ 40399: 驗證與權限錯誤
	UNAUTHORIZED   = 40100 // 401 - 未授權
	FORBIDDEN      = 40301 // 403 - 角色不允許
	OWNER_MISMATCH = 40302 // 403 - 非該 key 擁有者

	NOT_FOUND = 40400 // 404 - 資源未找到
	CONFLICT  = 40900 // 409 - 資源狀態不允許此操作

	RATE_LIMIT_EXCEEDED = 42900 // 429 - 速率限制超過

	// 50000 ~ 50199: 伺服器錯誤
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料損毀或寫入失敗
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停
	STORAGE_UNAVAILABLE = 50003 // 503 - KV 無法連線
	STORAGE_TIMEOUT     = 50004 // 503 - KV 逾時
)
