package workflow

// Applicant-facing texts. The confirmation message must keep the phrase
// "تم تأكيد الحجز" so legacy readers still recognise a confirmed booking.
const (
	titleStatusChanged = "تحديث حالة الطلب"
	titleNewRequest    = "طلب جديد"
	titleNewResponse   = "رد جديد من الإدارة"
	titleAssigned      = "تم إسناد طلب إليك"
	titlePayment       = "إيصال دفع جديد"
	titleBooking       = "تحديث الحجز"
	titleNewBooking    = "حجز رحلة بانتظار التأكيد"

	msgNewRequest         = "تم تقديم طلب جديد باسم %s"
	msgReceivedWithFee    = "تم استلام طلبك وتسجيل دفع الرسوم بقيمة %s"
	msgReceivedPayLater   = "تم استلام طلبك، ويمكن دفع الرسوم لاحقاً"
	msgApproved           = "تمت الموافقة على طلبك، يمكنك الآن حجز الرحلة"
	msgRejected           = "تم رفض الطلب"
	msgRejectedWithReason = "تم رفض الطلب: %s"
	msgCompleted          = "تم إكمال الطلب"
	msgReopened           = "تمت إعادة فتح طلبك للمراجعة"
	msgAssigned           = "تم إسناد طلب %s إليك"
	msgPaymentUploaded    = "تم رفع إيصال الدفع"
	msgPaymentForAdmin    = "رفع %s إيصال دفع جديد"
	msgAdminBooked        = "تم حجز رحلة لك بتاريخ %s"
	msgApplicantBooked    = "قام %s بحجز رحلة بتاريخ %s"
	msgBookingConfirmed   = "تم تأكيد الحجز. موعد الرحلة: %s"
	msgAdminCreated       = "تم إنشاء الطلب من قبل الإدارة"
)
