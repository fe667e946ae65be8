package sto

// defaultMaxTiers 单个募资的最大档位数
const defaultMaxTiers = 10
