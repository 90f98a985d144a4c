package blepkt

// Checksum 计算BLE包校验和
// 算法：对所有字节做异或（XOR）归约，空数据返回0
// 设备端会对整包做同样的校验，校验失败直接静默丢包（无任何回报）
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}
